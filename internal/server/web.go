package server

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"taskapp/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageData struct {
	Tasks     []models.Task
	LoadError string
	Flash     string
}

// mountPages serves the server-rendered task list. Every form posts a
// mutation and is answered with a redirect back to "/", so the browser always
// re-reads the list after a change instead of patching what it shows.
func (s *Server) mountPages() {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"timestamp": func(t models.Task) string { return t.CreatedAt.Format("2006-01-02 15:04") },
	}).ParseFS(templateFS, "templates/*.html"))
	s.engine.SetHTMLTemplate(tmpl)

	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/tasks", s.handleCreateForm)
	s.engine.POST("/tasks/:id/completion", s.handleCompletionForm)
	s.engine.POST("/tasks/:id/delete", s.handleDeleteForm)

	s.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	data := pageData{Flash: c.Query("error")}

	tasks, err := s.service.ListActiveTasks(c.Request.Context())
	if err != nil {
		status, msg := statusFor(err)
		s.logger.Error("render task list", "error", err)
		data.LoadError = msg
		c.HTML(status, "index.html", data)
		return
	}
	data.Tasks = tasks
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) handleCreateForm(c *gin.Context) {
	_, err := s.service.CreateTask(c.Request.Context(), c.PostForm("title"), c.PostForm("description"))
	s.redirectHome(c, err)
}

func (s *Server) handleCompletionForm(c *gin.Context) {
	id, ok := s.formID(c)
	if !ok {
		return
	}
	_, err := s.service.SetCompletion(c.Request.Context(), id, c.PostForm("completed") == "true")
	s.redirectHome(c, err)
}

func (s *Server) handleDeleteForm(c *gin.Context) {
	id, ok := s.formID(c)
	if !ok {
		return
	}
	s.redirectHome(c, s.service.DeleteTask(c.Request.Context(), id))
}

func (s *Server) formID(c *gin.Context) (int64, bool) {
	id, err := parseInt64(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape("invalid identifier"))
		return 0, false
	}
	return id, true
}

// redirectHome sends the browser back to the list, carrying a failure message
// when the mutation did not succeed.
func (s *Server) redirectHome(c *gin.Context, err error) {
	if err == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("form mutation failed", "path", c.FullPath(), "error", err)
	}
	c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(msg))
}
