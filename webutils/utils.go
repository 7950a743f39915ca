package webutils

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Positioner is implemented by errors that point into a source file.
type Positioner interface {
	Position() (line, field int)
}

func WriteFileHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func WriteFile(w http.ResponseWriter, in io.Reader, name string) {
	WriteFileHeaders(w, name)
	if _, err := io.Copy(w, in); err != nil {
		log.Printf("Error when writing file %q: %v", name, err)
	}
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal"))
	} else {
		w.Header().Set("Content-Type", "application/json")
		WriteResult(w, res)
	}
}

func WriteYamlFile(w http.ResponseWriter, v interface{}, fileName string) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal yaml"))
		return
	}
	if err := enc.Close(); err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to close yaml encoder"))
		return
	}
	WriteFile(w, &buf, fileName+".yaml")
}

func WriteResult(w http.ResponseWriter, data []byte) {
	_, err := w.Write(data)
	if err != nil {
		log.Printf("Error when writing response: %v", err)
	}
}

type jError struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
	Field *int   `json:"field,omitempty"`
}

func WriteError(w http.ResponseWriter, err error) {
	WriteErrorCode(w, http.StatusInternalServerError, err)
}

func WriteErrorCode(w http.ResponseWriter, code int, err error) {
	je := jError{Error: err.Error()}
	var p Positioner
	if errors.As(err, &p) {
		line, field := p.Position()
		je.Line = line
		if field >= 0 {
			je.Field = &field
		}
	}

	data, merr := json.Marshal(&je)
	if merr != nil {
		log.Printf("Error marshaling error '%v': %v", err, merr)
		http.Error(w, err.Error(), code)
		return
	}
	log.Printf("HERR: %v", string(data))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	WriteResult(w, data)
}
