package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	// auth
	router.HandlerFunc(http.MethodPost, "/v1/auth/sign-up", app.signUpHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/sign-in", app.signInHandler)
	router.HandlerFunc(http.MethodPost, "/v1/auth/logout", app.logoutHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/me/blogs", app.requireAuthUser(app.myBlogsHandler))

	// blogs
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:slug", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))

	// comments
	router.HandlerFunc(http.MethodGet, "/v1/comments/:slug", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/comments/:slug", app.requireAuthUser(app.addCommentHandler))
	router.HandlerFunc(http.MethodPut, "/v1/comments/:slug", app.requireAuthUser(app.updateCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireAuthUser(app.deleteCommentHandler))

	// uploads
	router.HandlerFunc(http.MethodPost, "/v1/uploads", app.requireAuthUser(app.uploadImageHandler))
	if app.uploadDir != "" {
		router.ServeFiles("/uploads/*filepath", http.Dir(app.uploadDir))
	}

	return app.recoverPanic(app.metricsMiddleware(app.logRequest(app.enableCORS(app.rateLimit(app.authenticate(app.timeout(router)))))))
}
