package httpapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/session"
	"github.com/danielpatrickdp/emotion-geometry/internal/store"
)

// schemaTypes maps /v1/schema/{name} to the documented record.
var schemaTypes = map[string]func() interface{}{
	"request":        func() interface{} { return engine.Request{} },
	"response":       func() interface{} { return engine.Response{} },
	"turn":           func() interface{} { return session.TurnInput{} },
	"result":         func() interface{} { return session.Result{} },
	"session":        func() interface{} { return store.Session{} },
	"chat":           func() interface{} { return ChatRequest{} },
	"create-session": func() interface{} { return CreateSessionRequest{} },
}

// Schema returns the JSON Schema for a named record, or nil if unknown.
func Schema(name string) *jsonschema.Schema {
	build, ok := schemaTypes[name]
	if !ok {
		return nil
	}
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	return reflector.Reflect(build())
}

// SchemaNames lists the names accepted by Schema.
func SchemaNames() []string {
	names := make([]string, 0, len(schemaTypes))
	for name := range schemaTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema := Schema(r.PathValue("name"))
	if schema == nil {
		sendJSONError(w, "unknown schema (valid: "+strings.Join(SchemaNames(), ", ")+")", http.StatusNotFound)
		return
	}
	sendJSON(w, schema, http.StatusOK)
}
