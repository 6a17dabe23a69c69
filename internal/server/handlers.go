package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/accurate-xml-converter/internal/branchcode"
	"github.com/ginjaninja78/accurate-xml-converter/internal/converter"
	"github.com/ginjaninja78/accurate-xml-converter/internal/logging"
	"github.com/ginjaninja78/accurate-xml-converter/internal/session"
	"github.com/ginjaninja78/accurate-xml-converter/internal/types"
	"github.com/ginjaninja78/accurate-xml-converter/internal/validation"
)

// sessionResponse is the JSON view of a session.
type sessionResponse struct {
	SessionID     string    `json:"session_id"`
	BranchCode    string    `json:"branch_code"`
	HasBranchCode bool      `json:"has_branch_code"`
	CreatedAt     time.Time `json:"created_at"`
}

func newSessionResponse(sess *session.Session) sessionResponse {
	code, ok := sess.BranchCode()
	return sessionResponse{
		SessionID:     sess.ID,
		BranchCode:    code,
		HasBranchCode: ok,
		CreatedAt:     sess.CreatedAt,
	}
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

func (s *Server) createSession(c *gin.Context) {
	sess := s.sessions.Create()
	s.logger.Debug("Session created", logging.F(logging.FieldSession, sess.ID))
	c.JSON(http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess))
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) lookupSession(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

// =============================================================================
// BRANCH CODE DETECTION
// =============================================================================

func (s *Server) detectBranchCode(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	log := s.logger.WithFields(
		logging.F(logging.FieldSession, sess.ID),
		logging.F(logging.FieldInputFile, header.Filename),
	)

	code, err := sess.DetectBranchCode(file)
	if err != nil {
		log.WithError(err).Warn("Branch code detection failed")

		var parseErr *branchcode.ParseError
		switch {
		case errors.As(err, &parseErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse XML: " + parseErr.Err.Error()})
		case errors.Is(err, session.ErrBranchCodeMissing):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, session.ErrBranchCodeAlreadySet):
			current, _ := sess.BranchCode()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "branch_code": current})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	log.Info("Branch code detected", logging.F(logging.FieldBranchCode, code))
	c.JSON(http.StatusOK, gin.H{"branch_code": code})
}

// =============================================================================
// CONVERSION
// =============================================================================

func (s *Server) convert(c *gin.Context) {
	sess, ok := s.lookupSession(c)
	if !ok {
		return
	}

	// Before PostForm, which drops a MaxBytesError.
	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	category, err := types.ParseCategory(c.PostForm("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := sess.BranchCode(); !ok {
		c.JSON(http.StatusConflict, gin.H{"error": session.ErrBranchCodeMissing.Error()})
		return
	}

	wb, err := converter.ReadWorkbook(file, header.Filename, s.cfg)
	if err != nil {
		s.logger.WithError(err).Warn("Could not read uploaded workbook",
			logging.F(logging.FieldSession, sess.ID),
			logging.F(logging.FieldInputFile, header.Filename),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.converter.Run(sess, wb, category)
	if err != nil {
		var missing *validation.MissingColumnsError
		var invalid *validation.InvalidRowsWarning
		switch {
		case errors.As(err, &missing):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "missing_columns": missing.Columns})
		case errors.As(err, &invalid):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "invalid_rows": invalid.Rows})
		case errors.Is(err, session.ErrBranchCodeMissing):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Header("X-Transaction-Count", strconv.Itoa(result.Stats.TransactionsCreated))
	c.Data(http.StatusOK, "application/xml", result.Content)
}

// formFile returns the uploaded "file" part, writing the error response
// itself when there is none.
func formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit)})
			return nil, nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return nil, nil, false
	}
	return file, header, true
}
