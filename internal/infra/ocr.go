package infra

// ocr.go — optional Google Cloud Vision pre-pass. The raw OCR text is handed
// to the extraction provider as supplementary context; when credentials are
// missing or the call fails the pipeline simply proceeds without it.

import (
	"context"
	"errors"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// ErrOCRSemTexto is returned when Vision finds no text on the page.
var ErrOCRSemTexto = errors.New("ocr: nenhum texto detectado")

// OCRClient wraps the Vision ImageAnnotator for document text detection.
type OCRClient struct {
	client *vision.ImageAnnotatorClient
}

// NewOCRClient creates a Vision client from the environment: inline
// GOOGLE_CREDENTIALS JSON, a GOOGLE_APPLICATION_CREDENTIALS file path, or
// application default credentials, in that order.
func NewOCRClient(ctx context.Context) (*OCRClient, error) {
	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("ocr: criar cliente vision: %w", err)
	}
	return &OCRClient{client: client}, nil
}

// DetectarTexto runs DOCUMENT_TEXT_DETECTION over one image and returns the
// full-page text.
func (o *OCRClient) DetectarTexto(ctx context.Context, imagem []byte) (string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{{
			Image:    &visionpb.Image{Content: imagem},
			Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
		}},
	}

	resp, err := o.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("ocr: anotar imagem: %w", err)
	}
	if len(resp.Responses) == 0 {
		return "", ErrOCRSemTexto
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return "", fmt.Errorf("ocr: %s", r.Error.Message)
	}
	if r.FullTextAnnotation == nil || r.FullTextAnnotation.Text == "" {
		return "", ErrOCRSemTexto
	}
	return r.FullTextAnnotation.Text, nil
}

// Close releases the underlying gRPC connection.
func (o *OCRClient) Close() error {
	return o.client.Close()
}
