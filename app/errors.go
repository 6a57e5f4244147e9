package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/commentservice"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/uploadservice"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url))
}

func (app *application) writeErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string, extra envelope) {
	env := envelope{"success": false, "message": message}
	for k, v := range extra {
		env[k] = v
	}

	err := app.writeJSON(w, status, env, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
}

// serverErrorResponse logs err. Its text only reaches the client in development.
func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"

	var extra envelope
	if app.config.Environment == "development" {
		extra = envelope{"detail": err.Error()}
	}

	app.writeErrorResponse(w, r, http.StatusInternalServerError, message, extra)
}

func (app *application) badRequestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (app *application) notFoundErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusNotFound, "the requested resource could not be found", nil)
}

func (app *application) failedValidationErrorResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, "validation failed", envelope{"errors": errors})
}

func (app *application) invalidCredentialsErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusBadRequest, "invalid credentials", nil)
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "invalid or missing authentication token", nil)
}

func (app *application) authenticationRequiredResponse(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	app.writeErrorResponse(w, r, http.StatusUnauthorized, "you must be authenticated to access this resource", nil)
}

func (app *application) forbiddenErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusForbidden, "you are not allowed to change this resource", nil)
}

func (app *application) conflictErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.writeErrorResponse(w, r, http.StatusConflict, err.Error(), nil)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusTooManyRequests, "rate limit exceeded", nil)
}

func (app *application) methodNotAllowedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.writeErrorResponse(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
}

// serviceErrorResponse maps the error kinds shared by the services to a response.
func (app *application) serviceErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError

	switch {
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	case errors.Is(err, common.ErrUnauthorized):
		app.invalidAuthenticationTokenResponse(w, r)
	case errors.Is(err, common.ErrForbidden):
		app.forbiddenErrorResponse(w, r)
	case errors.Is(err, common.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, commentservice.ErrAlreadyReviewed),
		errors.Is(err, blogservice.ErrSlugConflict):
		app.conflictErrorResponse(w, r, err)
	case errors.Is(err, common.ErrEditConflict):
		app.conflictErrorResponse(w, r, errors.New("unable to update the record due to an edit conflict, please try again"))
	case errors.Is(err, uploadservice.ErrFileTooLarge),
		errors.Is(err, uploadservice.ErrUnsupportedType),
		errors.Is(err, uploadservice.ErrEmptyFile):
		app.badRequestErrorResponse(w, r, err)
	case errors.Is(err, context.DeadlineExceeded):
		app.writeErrorResponse(w, r, http.StatusServiceUnavailable, "the request took too long to process", nil)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
