package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mogaika/glevel_browser/assets"
	"github.com/mogaika/glevel_browser/status"
	"github.com/mogaika/glevel_browser/vfs"
)

const maxUploadSize = 32 << 20

type Server struct {
	Levels   vfs.Directory
	Assets   vfs.Directory
	Hub      *status.Hub
	Resolver *assets.Resolver
	upgrader websocket.Upgrader
}

func NewServer(levels, assetsDir vfs.Directory, hub *status.Hub, workers int) *Server {
	return &Server{
		Levels:   levels,
		Assets:   assetsDir,
		Hub:      hub,
		Resolver: assets.NewResolver(assetsDir, workers),
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/levels", s.HandlerAjaxLevels).Methods("GET")
	r.HandleFunc("/json/level/{file}", s.HandlerAjaxLevel).Methods("GET")
	r.HandleFunc("/json/level/{file}/deps", s.HandlerAjaxLevelDeps).Methods("GET")
	r.HandleFunc("/action/{file}/{action}", s.HandlerActionLevel).Methods("GET")
	r.HandleFunc("/dump/level/{file}", s.HandlerDumpLevel).Methods("GET")
	r.HandleFunc("/upload/level/{file}", s.HandlerUploadLevel).Methods("POST")
	r.HandleFunc("/ws/status", s.HandlerStatus)
	return r
}

func (s *Server) Handler() http.Handler {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router())
	return handlers.LoggingHandler(os.Stdout, h)
}

func StartServer(addr string, s *Server) error {
	log.Printf("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}
