package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kevinaaaquil/readingbud/backend/apperr"
	"github.com/kevinaaaquil/readingbud/backend/models"
	"github.com/kevinaaaquil/readingbud/backend/service"
)

// bookJSON is the JSON form of a book create or update.
type bookJSON struct {
	Title          *string        `json:"title"`
	Author         *string        `json:"author"`
	PublishingDate *models.Scalar `json:"publishing_date"`
	ImagePathS     *string        `json:"image_path_S"`
	ImagePathM     *string        `json:"image_path_M"`
	ImagePathL     *string        `json:"image_path_L"`
	ImageURLS      *string        `json:"image_url_S"`
	ImageURLM      *string        `json:"image_url_M"`
	ImageURLL      *string        `json:"image_url_L"`
}

func (b bookJSON) input() service.BookInput {
	in := service.BookInput{Title: b.Title, Author: b.Author, ImageURLs: map[string]string{}}
	if b.PublishingDate != nil {
		s := string(*b.PublishingDate)
		in.PublishingDate = &s
	}
	slots := []struct {
		slot      string
		url, path *string
	}{
		{models.ImageSmall, b.ImageURLS, b.ImagePathS},
		{models.ImageMedium, b.ImageURLM, b.ImagePathM},
		{models.ImageLarge, b.ImageURLL, b.ImagePathL},
	}
	for _, s := range slots {
		if v := firstSet(s.path, s.url); v != "" {
			in.ImageURLs[s.slot] = v
		}
	}
	return in
}

func firstSet(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

// urlField maps an image slot to the text field carrying an external URL for it.
func urlField(slot string) string {
	return "image_url_" + strings.TrimPrefix(slot, "image_path_")
}

// UploadParser reads book requests in either multipart or JSON form.
type UploadParser struct {
	MaxBytes int64
}

// Parse returns the book input and a cleanup func releasing any multipart temp files.
func (p UploadParser) Parse(w http.ResponseWriter, r *http.Request) (service.BookInput, func(), error) {
	noop := func() {}
	if p.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, p.MaxBytes)
	}
	if !isMultipart(r) {
		var req bookJSON
		if err := decodeJSON(r, &req); err != nil {
			return service.BookInput{}, noop, err
		}
		return req.input(), noop, nil
	}

	if err := r.ParseMultipartForm(p.MaxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return service.BookInput{}, noop, apperr.Validation("Upload exceeds the %d byte limit", p.MaxBytes)
		}
		return service.BookInput{}, noop, apperr.Validation("Error uploading files").WithCause(err)
	}
	form := r.MultipartForm
	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			f.Close()
		}
		_ = form.RemoveAll()
	}

	in := service.BookInput{ImageURLs: map[string]string{}}
	text := func(key string) *string {
		if vs, ok := form.Value[key]; ok && len(vs) > 0 {
			v := vs[0]
			return &v
		}
		return nil
	}
	in.Title = text("title")
	in.Author = text("author")
	in.PublishingDate = text("publishing_date")

	for _, slot := range models.ImageSlots {
		headers := form.File[slot]
		if len(headers) == 0 {
			if v := firstSet(text(slot), text(urlField(slot))); v != "" {
				in.ImageURLs[slot] = v
			}
			continue
		}
		header := headers[0]
		file, err := header.Open()
		if err != nil {
			cleanup()
			return service.BookInput{}, noop, apperr.Validation("Error uploading files").WithCause(err)
		}
		opened = append(opened, file)
		contentType, err := imageType(file)
		if err != nil {
			cleanup()
			return service.BookInput{}, noop, err
		}
		in.Uploads = append(in.Uploads, service.ImageUpload{
			Slot:        slot,
			Filename:    header.Filename,
			ContentType: contentType,
			Body:        file,
		})
	}
	return in, cleanup, nil
}

// imageType sniffs the file and rewinds it. Anything that is not an image is rejected.
func imageType(file multipart.File) (string, error) {
	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", apperr.Validation("Error uploading files").WithCause(err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", apperr.Validation("Error uploading files").WithCause(err)
	}
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", apperr.Validation("Only image files are allowed (jpeg, jpg, png)")
	}
	return mtype.String(), nil
}
