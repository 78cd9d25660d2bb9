package analysis

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

type gemini struct {
	c *genai.Client
}

// NewGeminiClient creates a client talking to the Gemini API
func NewGeminiClient(ctx context.Context, apiKey string) (c Client, err error) {
	// Create client
	var gc *genai.Client
	if gc, err = genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}); err != nil {
		err = errors.Wrap(err, "analysis: creating genai client failed")
		return
	}
	c = &gemini{c: gc}
	return
}

func (g *gemini) Upload(ctx context.Context, r io.Reader, mimeType string) (f File, err error) {
	// Upload
	var gf *genai.File
	if gf, err = g.c.Files.Upload(ctx, r, &genai.UploadFileConfig{MIMEType: mimeType}); err != nil {
		err = errors.Wrap(err, "analysis: uploading file failed")
		return
	}

	// Create file
	f = File{
		MIMEType: gf.MIMEType,
		Name:     gf.Name,
		URI:      gf.URI,
	}
	if f.MIMEType == "" {
		f.MIMEType = mimeType
	}
	return
}

func (g *gemini) Generate(ctx context.Context, model, prompt string, f File) (t string, err error) {
	// Create contents
	cs := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromURI(f.URI, f.MIMEType),
		}, genai.RoleUser),
	}

	// Generate
	var r *genai.GenerateContentResponse
	if r, err = g.c.Models.GenerateContent(ctx, model, cs, nil); err != nil {
		err = errors.Wrap(err, "analysis: generating content failed")
		return
	}
	t = r.Text()
	return
}

func (g *gemini) Delete(ctx context.Context, name string) (err error) {
	if _, err = g.c.Files.Delete(ctx, name, nil); err != nil {
		err = errors.Wrapf(err, "analysis: deleting file %s failed", name)
		return
	}
	return
}
