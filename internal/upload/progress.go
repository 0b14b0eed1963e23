package upload

import "io"

// progressReader counts bytes read from the wrapped reader and reports the running total.
type progressReader struct {
	r      io.Reader
	read   int64
	report func(loaded int64)
}

func newProgressReader(r io.Reader, report func(loaded int64)) *progressReader {
	return &progressReader{r: r, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report(p.read)
	}
	return n, err
}
