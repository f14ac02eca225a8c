package errx

import (
	"net/http"
)

// WrapWeaviate maps vector store errors to the unified Error type.
func WrapWeaviate(err error) *Error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, WeaviateErrorMessage)
}
