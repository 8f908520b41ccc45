package httpserver

import (
	"time"

	"github.com/and161185/pocketfile/internal/model"
)

type userDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userDTO   `json:"user"`
}

type projectDTO struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type fileDTO struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	ProjectID        *int64    `json:"project_id"`
	Version          string    `json:"version"`
	UploadedBy       *int64    `json:"uploaded_by"`
	UploadTime       time.Time `json:"upload_time"`
}

type fileViewDTO struct {
	fileDTO
	ProjectName        *string `json:"project_name"`
	UploadedByUsername *string `json:"uploaded_by_username"`
}

type shareDTO struct {
	QRCode      string `json:"qrCode"`
	DownloadURL string `json:"downloadUrl"`
}

type messageDTO struct {
	Message string `json:"message"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type userCreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func toUserDTO(u model.User) userDTO {
	return userDTO{ID: u.ID, Username: u.Username, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

func toUserDTOs(us []model.User) []userDTO {
	out := make([]userDTO, 0, len(us))
	for _, u := range us {
		out = append(out, toUserDTO(u))
	}
	return out
}

func toSessionDTO(s model.Session) sessionDTO {
	return sessionDTO{Token: s.Token, ExpiresAt: s.ExpiresAt, User: toUserDTO(s.User)}
}

func toProjectDTO(p model.Project) projectDTO {
	return projectDTO{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt}
}

func toProjectDTOs(ps []model.Project) []projectDTO {
	out := make([]projectDTO, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProjectDTO(p))
	}
	return out
}

func toFileDTO(f model.File) fileDTO {
	return fileDTO{
		ID:               f.ID,
		Filename:         f.Filename,
		OriginalFilename: f.OriginalFilename,
		FilePath:         f.FilePath,
		FileSize:         f.FileSize,
		ProjectID:        f.ProjectID,
		Version:          f.Version,
		UploadedBy:       f.UploadedBy,
		UploadTime:       f.UploadTime,
	}
}

func toFileViewDTO(v model.FileView) fileViewDTO {
	return fileViewDTO{fileDTO: toFileDTO(v.File), ProjectName: v.ProjectName, UploadedByUsername: v.UploadedByUsername}
}

func toFileViewDTOs(vs []model.FileView) []fileViewDTO {
	out := make([]fileViewDTO, 0, len(vs))
	for _, v := range vs {
		out = append(out, toFileViewDTO(v))
	}
	return out
}
