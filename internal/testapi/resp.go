package testapi

import (
	"encoding/json"
	"net/http"
)

const (
	ContentTypeJSON      = "application/json; charset=utf-8"
	ContentTypeTextPlain = "text/plain; charset=utf-8"
)

// RespondJSON to an HTTP request, setting the status code and body if any.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) error {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}
