package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
)

// MaxBodyBytes caps request bodies accepted by DecodeJSON.
const MaxBodyBytes = 1 << 20

// DecodeJSON reads exactly one JSON value from the request body into dst.
// Unknown fields are ignored.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return domain.ErrInvalidJSON(errors.New("empty body"))
		case errors.As(err, &tooLarge):
			return domain.ErrInvalidJSON(fmt.Errorf("body larger than %d bytes", tooLarge.Limit))
		default:
			return domain.ErrInvalidJSON(err)
		}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.ErrInvalidJSON(errors.New("unexpected data after JSON value"))
	}
	return nil
}
