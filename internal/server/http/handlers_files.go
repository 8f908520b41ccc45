package httpserver

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/service"
)

// formOverhead leaves room for multipart headers and the text fields.
const formOverhead = 1 << 20

func (s *Server) listProjects(c *gin.Context) {
	ps, err := s.projects.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectDTOs(ps))
}

func (s *Server) createProject(c *gin.Context) {
	var req projectRequest
	if !s.bind(c, &req) {
		return
	}
	p, err := s.projects.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProjectDTO(*p))
}

func (s *Server) listFiles(c *gin.Context) {
	fs, err := s.files.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileViewDTOs(fs))
}

func (s *Server) getFile(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	f, err := s.files.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileViewDTO(*f))
}

func (s *Server) deleteFile(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.files.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageDTO{Message: "File deleted successfully"})
}

func (s *Server) upload(c *gin.Context) {
	limit := s.opts.MaxUploadSize + formOverhead
	if c.Request.ContentLength > limit {
		s.fail(c, s.tooLarge())
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			s.fail(c, s.tooLarge())
		case errors.Is(err, http.ErrMissingFile):
			s.fail(c, fmt.Errorf("%w: no file uploaded", errs.ErrValidation))
		default:
			s.fail(c, fmt.Errorf("%w: malformed multipart form", errs.ErrValidation))
		}
		return
	}
	defer func() { _ = c.Request.MultipartForm.RemoveAll() }()

	in := service.Upload{
		OriginalName: fh.Filename,
		Size:         fh.Size,
		Version:      c.PostForm("version"),
		UploaderID:   principal(c).UserID,
	}
	if raw := strings.TrimSpace(c.PostForm("project_id")); raw != "" {
		pid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.fail(c, fmt.Errorf("%w: project_id must be a positive integer", errs.ErrValidation))
			return
		}
		in.ProjectID = &pid
	}

	src, err := fh.Open()
	if err != nil {
		s.fail(c, fmt.Errorf("opening upload: %w", err))
		return
	}
	defer src.Close()
	in.Body = src

	f, err := s.files.Upload(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFileDTO(*f))
}

func (s *Server) tooLarge() error {
	return fmt.Errorf("%w: file exceeds the %d MiB limit", errs.ErrTooLarge, s.opts.MaxUploadSize>>20)
}

func (s *Server) qrcode(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	link, err := s.share.Link(c.Request.Context(), id, s.baseURL(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shareDTO{QRCode: link.QRCode, DownloadURL: link.DownloadURL})
}

// baseURL is the configured public URL, or the scheme and host the caller used.
func (s *Server) baseURL(c *gin.Context) string {
	if s.opts.PublicBaseURL != "" {
		return s.opts.PublicBaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fp := c.GetHeader("X-Forwarded-Proto"); fp != "" {
		p := strings.ToLower(strings.TrimSpace(strings.Split(fp, ",")[0]))
		if p == "http" || p == "https" {
			scheme = p
		}
	}
	return scheme + "://" + c.Request.Host
}

func (s *Server) download(c *gin.Context) {
	name := c.Param("name")
	rc, err := s.files.Open(c.Request.Context(), name)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer rc.Close()

	ct := mime.TypeByExtension(path.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, ct, rc, map[string]string{
		"X-Content-Type-Options": "nosniff",
	})
}
