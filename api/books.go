package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Aidin1998/bookshelf/api/responses"
	"github.com/Aidin1998/bookshelf/common/apiutil"
	"github.com/Aidin1998/bookshelf/internal/books"
	"github.com/Aidin1998/bookshelf/pkg/models"
	"github.com/gin-gonic/gin"
)

const (
	msgAdded   = "Added Successfully"
	msgDeleted = "Book is deleted"
)

// listBooks godoc
// @Summary      List books
// @Description  Returns every book in the collection, ordered by id
// @Tags         Books
// @Produce      json
// @Success      200  {array}   models.Book
// @Failure      500  {object}  errors.ProblemDetails
// @Router       /api/books [get]
func (s *Server) listBooks(c *gin.Context) {
	list, err := s.books.ListBooks(c.Request.Context())
	if err != nil {
		responses.InternalServerError(c, "failed to list books")
		return
	}
	responses.JSON(c, http.StatusOK, list)
}

// getBook godoc
// @Summary      Get a book
// @Description  Returns an array holding the book with the given id, or an empty array
// @Tags         Books
// @Produce      json
// @Param        id   path      int  true  "Book id"
// @Success      200  {array}   models.Book
// @Failure      400  {object}  errors.ProblemDetails
// @Failure      500  {object}  errors.ProblemDetails
// @Router       /api/books/{id} [get]
func (s *Server) getBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	book, err := s.books.GetBook(c.Request.Context(), id)
	switch {
	case errors.Is(err, books.ErrNotFound):
		responses.JSON(c, http.StatusOK, []models.Book{})
	case err != nil:
		responses.InternalServerError(c, "failed to get book")
	default:
		responses.JSON(c, http.StatusOK, []models.Book{book})
	}
}

// addBook godoc
// @Summary      Add a book
// @Description  Stores a new book titled with the given name
// @Tags         Books
// @Accept       json
// @Produce      plain
// @Param        book  body      models.BookRequest  true  "Book name"
// @Success      201   {string}  string  "Added Successfully"
// @Header       201   {string}  Location  "/api/books/{id}"
// @Failure      400   {object}  errors.ProblemDetails
// @Failure      500   {object}  errors.ProblemDetails
// @Router       /api/books/addBook [post]
func (s *Server) addBook(c *gin.Context) {
	book, ok := s.insertBook(c)
	if !ok {
		return
	}
	c.Header("Location", bookLocation(book.ID))
	responses.Text(c, http.StatusCreated, msgAdded)
}

// createBook godoc
// @Summary      Create a book
// @Description  Stores a new book and returns it with its id
// @Tags         Books
// @Accept       json
// @Produce      json
// @Param        book  body      models.BookRequest  true  "Book name"
// @Success      201   {object}  models.Book
// @Header       201   {string}  Location  "/api/books/{id}"
// @Failure      400   {object}  errors.ProblemDetails
// @Failure      500   {object}  errors.ProblemDetails
// @Router       /api/books [post]
func (s *Server) createBook(c *gin.Context) {
	book, ok := s.insertBook(c)
	if !ok {
		return
	}
	c.Header("Location", bookLocation(book.ID))
	responses.JSON(c, http.StatusCreated, book)
}

// updateBook godoc
// @Summary      Update a book
// @Description  Replaces the title of an existing book
// @Tags         Books
// @Accept       json
// @Produce      json
// @Param        id    path      int                 true  "Book id"
// @Param        book  body      models.BookRequest  true  "New name"
// @Success      200   {object}  models.Book
// @Failure      400   {object}  errors.ProblemDetails
// @Failure      404   {object}  errors.ProblemDetails
// @Failure      500   {object}  errors.ProblemDetails
// @Router       /api/books/{id} [put]
func (s *Server) updateBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, ok := bindBookRequest(c)
	if !ok {
		return
	}

	book, err := s.books.UpdateBook(c.Request.Context(), id, req.Name)
	switch {
	case errors.Is(err, books.ErrNotFound):
		responses.NotFound(c, fmt.Sprintf("book %d not found", id))
	case err != nil:
		responses.InternalServerError(c, "failed to update book")
	default:
		responses.JSON(c, http.StatusOK, book)
	}
}

// deleteBook godoc
// @Summary      Delete a book
// @Tags         Books
// @Produce      plain
// @Param        id   path      int  true  "Book id"
// @Success      200  {string}  string  "Book is deleted"
// @Failure      400  {object}  errors.ProblemDetails
// @Failure      404  {object}  errors.ProblemDetails
// @Failure      500  {object}  errors.ProblemDetails
// @Router       /api/books/{id} [delete]
func (s *Server) deleteBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	err := s.books.DeleteBook(c.Request.Context(), id)
	switch {
	case errors.Is(err, books.ErrNotFound):
		responses.NotFound(c, fmt.Sprintf("book %d not found", id))
	case err != nil:
		responses.InternalServerError(c, "failed to delete book")
	default:
		responses.Text(c, http.StatusOK, msgDeleted)
	}
}

func (s *Server) insertBook(c *gin.Context) (models.Book, bool) {
	req, ok := bindBookRequest(c)
	if !ok {
		return models.Book{}, false
	}
	book, err := s.books.CreateBook(c.Request.Context(), req.Name)
	if err != nil {
		responses.InternalServerError(c, "failed to create book")
		return models.Book{}, false
	}
	return book, true
}

// parseID reads the :id path parameter. Anything but a positive integer
// gets a 400 response.
func parseID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		responses.BadRequest(c, fmt.Sprintf("invalid book id %q", raw))
		return 0, false
	}
	return id, true
}

func bindBookRequest(c *gin.Context) (models.BookRequest, bool) {
	var req models.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fieldErrs := apiutil.FieldErrors(err); fieldErrs != nil {
			responses.BadRequest(c, "request validation failed", fieldErrs...)
		} else {
			responses.BadRequest(c, "invalid request body")
		}
		return models.BookRequest{}, false
	}
	return req, true
}

func bookLocation(id int64) string {
	return "/api/books/" + strconv.FormatInt(id, 10)
}
