package api

import (
	"net/http"

	"github.com/cosmez/reapi-go/internal/bridge"
	"github.com/cosmez/reapi-go/internal/command"
	"github.com/cosmez/reapi-go/internal/output"
	"github.com/cosmez/reapi-go/internal/serializer"
)

// handleCommand runs the command named by the request path.
//
// The escaped path is used so that %2F inside a segment stays part of the
// argument instead of splitting it.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	inv, err := command.ParsePath(r.URL.EscapedPath())
	if err != nil {
		writeFailure(w, &bridge.Failure{Kind: bridge.MalformedPath, Message: err.Error(), Err: err})
		return
	}

	if codec := r.URL.Query().Get("codec"); codec != "" {
		if _, err := serializer.Get(codec); err != nil {
			writeFailure(w, &bridge.Failure{Kind: bridge.MalformedPath, Message: err.Error(), Err: err})
			return
		}
		inv.Codec = codec
	}

	v, err := s.exec.Execute(r.Context(), inv)
	if err != nil {
		writeFailure(w, err)
		return
	}

	conv, err := output.ToJSON(v)
	if err != nil {
		s.logger.Error("reply conversion failed", "name", inv.Name, "error", err)
		writeFailure(w, err)
		return
	}
	writeResult(w, conv)
}
