package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/and161185/pocketfile/internal/service"
)

func (s *Server) listUsers(c *gin.Context) {
	us, err := s.users.List(c.Request.Context(), principal(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTOs(us))
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	u, err := s.users.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(*u))
}

func (s *Server) createUser(c *gin.Context) {
	var req userCreateRequest
	if !s.bind(c, &req) {
		return
	}
	u, err := s.users.Create(c.Request.Context(), principal(c), service.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserDTO(*u))
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req userUpdateRequest
	if !s.bind(c, &req) {
		return
	}
	u, err := s.users.Update(c.Request.Context(), principal(c), id, service.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserDTO(*u))
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.users.Delete(c.Request.Context(), principal(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageDTO{Message: "User deleted successfully"})
}
