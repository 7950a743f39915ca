package web

import (
	"bytes"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/glevel_browser/pack"
	"github.com/mogaika/glevel_browser/pack/glevel"
	"github.com/mogaika/glevel_browser/status"
	"github.com/mogaika/glevel_browser/utils"
	"github.com/mogaika/glevel_browser/vfs"
	"github.com/mogaika/glevel_browser/webutils"
)

func isLevelName(name string) bool {
	return strings.HasSuffix(strings.ToUpper(name), glevel.EXTENSION) && !strings.ContainsAny(name, "/\\")
}

// writeLoadError maps a load failure to a status code: 404 for missing files,
// 422 for files that do not parse.
func writeLoadError(w http.ResponseWriter, err error) {
	var fe *glevel.FormatError
	switch {
	case errors.As(err, &fe):
		webutils.WriteErrorCode(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, fs.ErrNotExist):
		webutils.WriteErrorCode(w, http.StatusNotFound, err)
	default:
		webutils.WriteError(w, err)
	}
}

func (s *Server) loadLevel(w http.ResponseWriter, r *http.Request) (string, *glevel.Result, bool) {
	file := mux.Vars(r)["file"]
	if !isLevelName(file) {
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.Errorf("'%s' is not a level file", file))
		return file, nil, false
	}
	data, err := pack.GetInstanceHandler(s.Levels, file)
	if err != nil {
		log.Printf("[web] Error loading level '%s': %v", file, err)
		writeLoadError(w, err)
		return file, nil, false
	}
	res, ok := data.(*glevel.Result)
	if !ok {
		webutils.WriteError(w, errors.Errorf("File '%s' is not a level", file))
		return file, nil, false
	}
	return file, res, true
}

func (s *Server) HandlerAjaxLevels(w http.ResponseWriter, r *http.Request) {
	if files, err := vfs.ListByExt(s.Levels, glevel.EXTENSION); err != nil {
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, files)
	}
}

func (s *Server) HandlerAjaxLevel(w http.ResponseWriter, r *http.Request) {
	if _, res, ok := s.loadLevel(w, r); ok {
		webutils.WriteJson(w, res)
	}
}

func (s *Server) HandlerAjaxLevelDeps(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.loadLevel(w, r)
	if !ok {
		return
	}
	report, err := s.Resolver.Resolve(r.Context(), res.Dependencies)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, report)
}

func (s *Server) HandlerActionLevel(w http.ResponseWriter, r *http.Request) {
	file, res, ok := s.loadLevel(w, r)
	if !ok {
		return
	}
	base := strings.TrimSuffix(file, file[len(file)-len(glevel.EXTENSION):])

	switch action := mux.Vars(r)["action"]; action {
	case "asyaml":
		webutils.WriteYamlFile(w, res.Level, base)
	case "encode":
		data, err := glevel.Encode(res.Level)
		if err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to encode"))
			return
		}
		webutils.WriteFile(w, bytes.NewReader(data), file)
	case "dump":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		utils.FDump(w, res)
	default:
		webutils.WriteErrorCode(w, http.StatusNotFound, errors.Errorf("Unknown action %q", action))
	}
}

func (s *Server) HandlerDumpLevel(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	if !isLevelName(file) {
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.Errorf("'%s' is not a level file", file))
		return
	}
	f, err := vfs.DirectoryGetFile(s.Levels, file)
	if err != nil {
		writeLoadError(w, err)
		return
	}
	reader, err := vfs.OpenFileAndGetReader(f, true)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	defer f.Close()
	webutils.WriteFile(w, reader, file)
}

// HandlerUploadLevel stores a level only if it parses.
func (s *Server) HandlerUploadLevel(w http.ResponseWriter, r *http.Request) {
	file := mux.Vars(r)["file"]
	if !isLevelName(file) {
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.Errorf("'%s' is not a level file", file))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	fileStream, _, err := r.FormFile("data")
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.Wrapf(err, "File stream getting error"))
		return
	}
	defer fileStream.Close()

	data, err := io.ReadAll(fileStream)
	if err != nil {
		webutils.WriteErrorCode(w, http.StatusBadRequest, errors.Wrapf(err, "reading file error"))
		return
	}

	src := utils.NewBytesSource(file, data)
	inst, err := pack.CallHandler(src, src.Reader())
	if err != nil {
		s.Hub.Level(status.LevelInfoFor(file, nil, err))
		writeLoadError(w, err)
		return
	}
	res := inst.(*glevel.Result)

	f, err := vfs.DirectoryGetFile(s.Levels, file)
	if err != nil {
		if addErr := s.Levels.Add(vfs.NewDirectoryDriverFile(file)); addErr != nil {
			webutils.WriteError(w, errors.Wrapf(addErr, "Cannot create '%s'", file))
			return
		}
		if f, err = vfs.DirectoryGetFile(s.Levels, file); err != nil {
			webutils.WriteError(w, err)
			return
		}
	}
	if err := vfs.OpenFileAndCopy(f, bytes.NewReader(data)); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Error when updating level file"))
		return
	}

	s.Hub.Level(status.LevelInfoFor(file, res, nil))
	webutils.WriteJson(w, res.Diagnostics)
}

func (s *Server) HandlerStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	s.Hub.Attach(conn)
}
