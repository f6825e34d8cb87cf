package handler

import (
	"bytes"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	// Decoders for the upload dimension probe.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const maxUploadBytes = 15 << 20

type uploadedImage struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// UploadImages receives a multipart batch, stores each file with the
// provider under the request's upload session, and admits the resulting
// URLs into the owner's pending gallery. The response reports how many
// entries the quota admitted and rejected.
func (a *API) UploadImages(c *gin.Context) {
	owner, ok := a.ownerFromQuery(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "no uploaded images found")
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "no uploaded images found")
		return
	}

	manager := a.managers.For(owner)
	sessionID := strings.TrimSpace(c.PostForm("session_id"))
	if sessionID == "" {
		sessionID = manager.NewSessionID()
	} else {
		manager.TrackSession(sessionID)
	}

	uploaded := make([]uploadedImage, 0, len(files))
	for _, file := range files {
		contentType := file.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			respondError(c, http.StatusBadRequest, "only image files are allowed")
			return
		}
		if file.Size > maxUploadBytes {
			respondError(c, http.StatusBadRequest, "image exceeds the upload size limit")
			return
		}

		src, err := file.Open()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to read uploaded image")
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to read uploaded image")
			return
		}

		config, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			respondError(c, http.StatusBadRequest, "uploaded file is not a decodable image")
			return
		}

		url, err := a.objects.Upload(sessionID, file.Filename, contentType, data)
		if err != nil {
			respondError(c, http.StatusBadGateway, "failed to store uploaded image")
			return
		}

		uploaded = append(uploaded, uploadedImage{
			URL:    url,
			Name:   file.Filename,
			Width:  config.Width,
			Height: config.Height,
		})
	}

	urls := make([]string, 0, len(uploaded))
	for _, item := range uploaded {
		urls = append(urls, item.URL)
	}

	result, err := manager.AdmitUploads(sessionID, urls, strings.TrimSpace(c.PostForm("caption")))
	if err != nil {
		respondError(c, http.StatusBadGateway, "failed to commit upload session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"images":     uploaded,
		"admitted":   result.Admitted,
		"rejected":   result.Rejected,
	})
}
