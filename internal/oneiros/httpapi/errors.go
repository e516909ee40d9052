// Package httpapi bridges the core's Context contract (spec §6) to a
// gin router, translating errs taxonomy values to the status codes
// spec §7's "User-visible failure behavior" table pins. The HTTP
// transport itself is named out of core scope in spec §1 — this
// package is the thin external collaborator spec §6 says consumes the
// core, not a redesign of the core.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oneiros/oneiros/internal/oneiros/errs"
)

// statusFor maps an error from the core onto the HTTP status spec §7
// names. Unrecognized errors fall back to 500, matching the table's
// implicit default for StoreIO/Serialization/Projection.
func statusFor(err error) int {
	switch err.(type) {
	case *errs.NotFoundError:
		return http.StatusNotFound
	case *errs.ConflictError:
		return http.StatusConflict
	case *errs.NarrowingError, *errs.MalformedLinkError, *errs.MalformedRefError, *errs.MalformedIDError:
		return http.StatusBadRequest
	case *errs.StoreIOError, *errs.SerializationError, *errs.ProjectionError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// fail writes a JSON error body with the status spec §7 assigns to
// err's kind.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
