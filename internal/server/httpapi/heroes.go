package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/herostore/internal/server/services"
	"github.com/gin-gonic/gin"
)

// readUpload reads the multipart "file" field. At most one byte past the
// size limit is read so oversized files are still reported as too large.
func readUpload(c *gin.Context) (services.Upload, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		unprocessable(c, "file is required")
		return services.Upload{}, false
	}

	f, err := fh.Open()
	if err != nil {
		unprocessable(c, "file is unreadable")
		return services.Upload{}, false
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, services.MaxUploadSize+1))
	if err != nil {
		unprocessable(c, "file is unreadable")
		return services.Upload{}, false
	}

	return services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, true
}

func imageID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		unprocessable(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) uploadImage(c *gin.Context) {
	user := currentUser(c)

	f, ok := readUpload(c)
	if !ok {
		return
	}

	img, err := s.heroes.Upload(c.Request.Context(), user.ID, f)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadView{ID: img.ID, UserID: user.ID, ImageURL: img.ImageURL, Active: img.Active})
}

func (s *HTTPServer) listImages(c *gin.Context) {
	images, err := s.heroes.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	views := make([]imageView, 0, len(images))
	for i := range images {
		views = append(views, newImageView(&images[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (s *HTTPServer) getImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	img, err := s.heroes.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newImageView(img))
}

func (s *HTTPServer) updateImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}
	f, ok := readUpload(c)
	if !ok {
		return
	}

	img, err := s.heroes.Update(c.Request.Context(), currentUser(c).ID, id, f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newImageView(img))
}

func (s *HTTPServer) deleteImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	img, err := s.heroes.Delete(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newImageView(img))
}

func (s *HTTPServer) activateImage(c *gin.Context) {
	id, ok := imageID(c)
	if !ok {
		return
	}

	img, err := s.heroes.Activate(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newImageView(img))
}

func (s *HTTPServer) activeImage(c *gin.Context) {
	img, err := s.heroes.GetActive(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newImageView(img))
}
