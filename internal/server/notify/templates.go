package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

//go:embed templates/*.html
var embedded embed.FS

// Names lists the templates every Templates set must provide.
var Names = []string{TemplateVerification, TemplateResetPassword}

// Templates is an immutable set of parsed email templates.
type Templates struct {
	set map[string]*template.Template
}

func parse(name, text string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return t, nil
}

// LoadEmbedded parses the templates compiled into the binary.
func LoadEmbedded() (*Templates, error) {
	set := make(map[string]*template.Template, len(Names))
	for _, name := range Names {
		b, err := embedded.ReadFile("templates/" + name + ".html")
		if err != nil {
			return nil, err
		}
		t, err := parse(name, string(b))
		if err != nil {
			return nil, err
		}
		set[name] = t
	}
	return &Templates{set: set}, nil
}

// S3API is the subset of *s3.Client used to fetch templates.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LoadS3Templates fetches "<prefix><name>.html" for every template from
// bucket. It is meant to run once at start-up.
func LoadS3Templates(ctx context.Context, client S3API, bucket, prefix string) (*Templates, error) {
	set := make(map[string]*template.Template, len(Names))
	for _, name := range Names {
		key := prefix + name + ".html"
		out, err := client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
		}
		b, err := io.ReadAll(out.Body)
		_ = out.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read s3://%s/%s: %w", bucket, key, err)
		}
		t, err := parse(name, string(b))
		if err != nil {
			return nil, err
		}
		set[name] = t
	}
	return &Templates{set: set}, nil
}

// Render executes the named template with params.
func (t *Templates) Render(name string, params map[string]string) (string, error) {
	tpl, ok := t.set[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
