package util

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondServiceError(c, err)
	return w
}

func TestRespondServiceErrorStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, respond(NotFoundError("missing")).Code)
	assert.Equal(t, http.StatusConflict, respond(ConflictError("taken")).Code)
	assert.Equal(t, http.StatusInternalServerError, respond(PersistenceError("broken", errors.New("disk"))).Code)
	assert.Equal(t, http.StatusBadRequest, respond(ValidationError("bad")).Code)
	assert.Equal(t, http.StatusBadRequest, respond(InvalidTransitionError("terminal")).Code)
	assert.Equal(t, http.StatusBadRequest, respond(PackageExhaustedError("empty")).Code)
	assert.Equal(t, http.StatusBadRequest, respond(PackageExpiredError("late")).Code)
	assert.Equal(t, http.StatusBadRequest, respond(OverpaymentError("over")).Code)
}

func TestRespondServiceErrorUnknownErrorIsServerError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, respond(errors.New("raw gorm error")).Code)
}

func TestAsServiceErrorUnwrapsChain(t *testing.T) {
	svcErr := NotFoundError("patient missing")
	wrapped := fmt.Errorf("loading patient: %w", svcErr)
	assert.Equal(t, KindNotFound, AsServiceError(wrapped).Kind)
}

func TestServiceErrorMessage(t *testing.T) {
	plain := ValidationError("bad input")
	assert.Equal(t, "bad input", plain.Error())

	wrapped := PersistenceError("save failed", errors.New("disk full"))
	assert.Equal(t, "save failed: disk full", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "disk full")
}
