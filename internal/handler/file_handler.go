package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"abcretail/internal/fileintake"
	"abcretail/pkg/logger"
)

type FileHandler struct {
	intake *fileintake.Intake
}

func NewFileHandler(intake *fileintake.Intake) *FileHandler {
	return &FileHandler{intake: intake}
}

// ListContracts handles listing stored contract files
func (h *FileHandler) ListContracts(c echo.Context) error {
	log := logger.FromEcho(c)

	files, err := h.intake.ListContracts()
	if err != nil {
		return respondError(c, log, err)
	}

	log.Info("Contract files listed", zap.Int("count", len(files)))
	return c.JSON(http.StatusOK, echo.Map{
		"files": files,
		"count": len(files),
	})
}

// DownloadContract streams a stored contract file
func (h *FileHandler) DownloadContract(c echo.Context) error {
	log := logger.FromEcho(c)
	name := c.Param("name")

	f, err := h.intake.OpenContract(name)
	if err != nil {
		log.Warn("Contract file not found", zap.String("file_name", name))
		return respondError(c, log, err)
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+name)
	return c.Stream(http.StatusOK, "application/octet-stream", f)
}
