package services

import (
	"nganya/internal/domain"
)

// storeErr keeps not-found errors as they are and turns anything else into a
// PersistenceError carrying a client-safe message.
func storeErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if domain.IsNotFound(err) {
		return err
	}
	return domain.PersistenceError{Msg: msg, Err: err}
}
