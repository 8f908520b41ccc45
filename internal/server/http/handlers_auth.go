package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/model"
)

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if !s.bind(c, &req) {
		return
	}
	sess, err := s.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionDTO(sess))
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if !s.bind(c, &req) {
		return
	}
	sess, err := s.auth.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionDTO(sess))
}

func (s *Server) me(c *gin.Context) {
	u, err := s.auth.Me(c.Request.Context(), principal(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(*u))
}

// bind decodes a JSON body into dst, answering 400 on malformed input.
func (s *Server) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.fail(c, fmt.Errorf("%w: invalid JSON body", errs.ErrValidation))
		return false
	}
	return true
}

// pathID parses the :id route parameter as a positive integer.
func (s *Server) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		s.fail(c, fmt.Errorf("%w: invalid id", errs.ErrValidation))
		return 0, false
	}
	return id, true
}

// principal returns the identity set by requireSession.
func principal(c *gin.Context) model.Principal {
	p, _ := PrincipalFromCtx(c.Request.Context())
	return p
}
