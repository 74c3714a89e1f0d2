package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SelectionController manages the per-session multi-select used for bulk deletes.
type SelectionController struct {
	reader    RecordReader
	deletions DeletionRecorder
}

func NewSelectionController(reader RecordReader, deletions DeletionRecorder) *SelectionController {
	return &SelectionController{
		reader:    reader,
		deletions: deletions,
	}
}

type selectionResponse struct {
	Selected []uint `json:"selected"`
	Active   bool   `json:"active"`
}

func (sc *SelectionController) GetSelection(c *gin.Context) {
	selection := sessionFrom(c).Selection
	c.JSON(http.StatusOK, selectionResponse{Selected: selection.Selected(), Active: selection.Active()})
}

// Toggle flips one record in or out of the selection.
// POST /api/sessions/:sid/selection/:id
func (sc *SelectionController) Toggle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	selection := sessionFrom(c).Selection
	on := selection.Toggle(id)
	c.JSON(http.StatusOK, gin.H{
		"selected": selection.Selected(),
		"active":   selection.Active(),
		"toggled":  on,
	})
}

func (sc *SelectionController) Clear(c *gin.Context) {
	selection := sessionFrom(c).Selection
	selection.Clear()
	c.JSON(http.StatusOK, selectionResponse{Selected: selection.Selected(), Active: false})
}

// DeleteSelected deletes the selected records that still exist.
// POST /api/sessions/:sid/selection/delete
func (sc *SelectionController) DeleteSelected(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := sc.reader.Snapshot(ctx)
	if err != nil {
		respondInternalError(c, err, "list books for delete")
		return
	}

	n, err := sessionFrom(c).Selection.DeleteSelected(ctx, current)
	if err != nil {
		respondInternalError(c, err, "delete selected books")
		return
	}
	if n > 0 && sc.deletions != nil {
		sc.deletions.IncRecordsDeleted(n)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
