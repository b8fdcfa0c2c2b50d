package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	"github.com/maastricht-university/clip-sentiment/intake"
)

// UploadField is the multipart field the backend reads the video from.
const UploadField = "video"

// Progress is one byte-level upload progress report.
type Progress struct {
	BytesSent  int64
	BytesTotal int64
}

// Percent rounds the completed share to an integer percentage.
func (p Progress) Percent() int {
	if p.BytesTotal <= 0 {
		return 100
	}
	return int((p.BytesSent*100 + p.BytesTotal/2) / p.BytesTotal)
}

type uploadResp struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// Upload streams the candidate to POST /api/upload as a single multipart body
// and returns the job id the backend issued. onProgress, when set, sees a
// non-decreasing BytesSent; the last report before a successful return has
// BytesSent == BytesTotal. No report is delivered after Upload returns.
func (h *HTTP) Upload(ctx context.Context, c intake.Candidate, onProgress func(Progress)) (string, error) {
	head, tail, contentType, err := multipartFrame(c)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	fd, err := c.Open()
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer fd.Close()

	pr := &progressReader{r: io.LimitReader(fd, c.Size), total: c.Size, fn: onProgress}
	defer pr.stop()
	pr.report()

	body := io.MultiReader(bytes.NewReader(head), pr, bytes.NewReader(tail))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url("/api/upload"), body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.ContentLength = int64(len(head)) + c.Size + int64(len(tail))
	req.Header.Set("Content-Type", contentType)

	resp, err := h.c.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: errors.New(readFailure(resp))}
	}

	var out uploadResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	if out.JobID == "" {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: errors.New("response has no job_id")}
	}
	if pr.sentBytes() != c.Size {
		return "", &TransportError{StatusCode: resp.StatusCode,
			Err: fmt.Errorf("sent %d of %d bytes", pr.sentBytes(), c.Size)}
	}
	return out.JobID, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartFrame renders everything around the file bytes so the body can be
// streamed with a known Content-Length.
func multipartFrame(c intake.Candidate) (head, tail []byte, contentType string, err error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		UploadField, quoteEscaper.Replace(c.Name)))
	hdr.Set("Content-Type", c.MediaType)
	if _, err = w.CreatePart(hdr); err != nil {
		return nil, nil, "", err
	}
	head = append([]byte(nil), b.Bytes()...)

	b.Reset()
	if err = w.Close(); err != nil {
		return nil, nil, "", err
	}
	tail = append([]byte(nil), b.Bytes()...)
	return head, tail, w.FormDataContentType(), nil
}

// progressReader counts file bytes as the transport pulls them.
type progressReader struct {
	r     io.Reader
	total int64
	fn    func(Progress)

	mu      sync.Mutex
	sent    int64
	stopped bool
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.mu.Lock()
		p.sent += int64(n)
		p.mu.Unlock()
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fn == nil || p.stopped {
		return
	}
	p.fn(Progress{BytesSent: p.sent, BytesTotal: p.total})
}

func (p *progressReader) sentBytes() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}

func (p *progressReader) stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}
