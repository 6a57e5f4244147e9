package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/commentservice"
	"github.com/sushihentaime/bloghub/internal/uploadservice"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var input signUpRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.SignUp(r.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	app.successResponse(w, r, http.StatusCreated, "user registered", user)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) signInHandler(w http.ResponseWriter, r *http.Request) {
	var input signInRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, token, err := app.userService.SignIn(r.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrInvalidCredentials):
			app.invalidCredentialsErrorResponse(w, r)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	app.successResponse(w, r, http.StatusOK, "signed in", envelope{"user": user, "token": token})
}

// logoutHandler revokes the presented token. Calling it without one is not an error.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	err := app.userService.Logout(r.Context(), app.getClaimsContext(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "signed out", nil)
}

func (app *application) myBlogsHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	blogs, err := app.blogService.GetMyBlogs(r.Context(), user.ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "blogs fetched", blogs)
}

func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	page := app.readInt(r, "page", blogservice.DefaultPage)
	limit := app.readInt(r, "limit", blogservice.DefaultLimit)

	blogs, err := app.blogService.GetBlogs(r.Context(), page, limit)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "blogs fetched", blogs)
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input blogservice.CreateBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input.UserID = app.getUserContext(r).ID

	blog, err := app.blogService.CreateBlog(r.Context(), &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusCreated, "blog created", blog)
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	blog, err := app.blogService.GetBlogBySlug(r.Context(), app.readParam(r, "slug"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "blog fetched", blog)
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input blogservice.UpdateBlogRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input.ID = id
	input.UserID = app.getUserContext(r).ID

	blog, err := app.blogService.UpdateBlog(r.Context(), &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "blog updated", blog)
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), id, app.getUserContext(r).ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "blog deleted", nil)
}

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	comments, err := app.commentService.GetComments(r.Context(), app.readParam(r, "slug"))
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "comments fetched", comments)
}

func (app *application) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	var input commentservice.AddCommentRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input.BlogSlug = app.readParam(r, "slug")
	input.UserID = app.getUserContext(r).ID

	comment, err := app.commentService.AddComment(r.Context(), &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusCreated, "comment added", comment)
}

func (app *application) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	var input commentservice.UpdateCommentRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	input.BlogSlug = app.readParam(r, "slug")
	input.UserID = app.getUserContext(r).ID

	comment, err := app.commentService.UpdateComment(r.Context(), &input)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "comment updated", comment)
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readUUIDParam(r, "id")
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.commentService.DeleteComment(r.Context(), id, app.getUserContext(r).ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.successResponse(w, r, http.StatusOK, "comment deleted", nil)
}

func (app *application) uploadImageHandler(w http.ResponseWriter, r *http.Request) {
	// leave room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, uploadservice.MaxImageSize+1<<20)

	err := r.ParseMultipartForm(uploadservice.MaxImageSize)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			app.writeErrorResponse(w, r, http.StatusRequestEntityTooLarge, uploadservice.ErrFileTooLarge.Error(), nil)
			return
		}
		app.badRequestErrorResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		app.failedValidationErrorResponse(w, r, map[string]string{"file": "must be provided"})
		return
	}
	defer file.Close()

	image, err := app.uploadService.Upload(r.Context(), file, header.Filename, header.Size)
	if err != nil {
		switch {
		case errors.Is(err, uploadservice.ErrFileTooLarge):
			app.writeErrorResponse(w, r, http.StatusRequestEntityTooLarge, err.Error(), nil)
		case errors.Is(err, uploadservice.ErrUnsupportedType):
			app.writeErrorResponse(w, r, http.StatusUnsupportedMediaType, err.Error(), nil)
		default:
			app.serviceErrorResponse(w, r, err)
		}
		return
	}

	app.successResponse(w, r, http.StatusCreated, "image uploaded", image)
}
