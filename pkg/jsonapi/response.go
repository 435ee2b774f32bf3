package jsonapi

import (
	"encoding/json"
	"net/http"
)

// WriteDocument writes doc with the given status.
func WriteDocument(w http.ResponseWriter, status int, doc Document) {
	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(doc)
}

// WriteResource writes a single resource as primary data.
func WriteResource(w http.ResponseWriter, status int, r Resource) {
	WriteDocument(w, status, Document{Data: r})
}

// WriteCollection writes a list of resources. An empty list is written as
// [] rather than omitted.
func WriteCollection(w http.ResponseWriter, status int, resources []Resource, meta Meta) {
	if resources == nil {
		resources = []Resource{}
	}
	WriteDocument(w, status, Document{Data: resources, Meta: meta})
}

// WriteError writes errs. The status of the first error is used for the
// response.
func WriteError(w http.ResponseWriter, errs ...Error) {
	status := http.StatusInternalServerError
	if len(errs) > 0 {
		status = errs[0].StatusCode()
	}
	WriteDocument(w, status, Document{Errors: errs})
}
