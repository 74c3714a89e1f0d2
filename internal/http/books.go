package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type BooksController struct {
	store     RecordStore
	deletions DeletionRecorder
}

func NewBooksController(store RecordStore, deletions DeletionRecorder) *BooksController {
	return &BooksController{
		store:     store,
		deletions: deletions,
	}
}

// GetAllBooks returns every record, newest first.
func (controller *BooksController) GetAllBooks(c *gin.Context) {
	books, err := controller.store.Snapshot(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}

func (controller *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := controller.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	c.IndentedJSON(http.StatusOK, book)
}

// DeleteBook removes one record.
// DELETE /api/books/:id
func (controller *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	book, err := controller.store.GetByID(ctx, id)
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	if book == nil {
		respondNotFound(c, "book")
		return
	}

	if err := controller.store.Delete(ctx, *book); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}
	if controller.deletions != nil {
		controller.deletions.IncRecordsDeleted(1)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": 1})
}
