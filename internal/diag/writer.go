package diag

import (
	"io"
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Sources holds the source text of every loaded file so diagnostics can be
// printed with snippets. Front-ends add files as they load them.
type Sources struct {
	mu    sync.Mutex
	files map[string]*hcl.File
}

func NewSources() *Sources {
	return &Sources{files: make(map[string]*hcl.File)}
}

// AddFile registers a file parsed by an HCL parser.
func (s *Sources) AddFile(name string, f *hcl.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = f
}

// AddBytes registers raw source text for a file that was not parsed as HCL.
func (s *Sources) AddBytes(name string, src []byte) {
	s.AddFile(name, &hcl.File{Bytes: src})
}

// Files returns a snapshot of the registered files.
func (s *Sources) Files() map[string]*hcl.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*hcl.File, len(s.files))
	for k, v := range s.files {
		out[k] = v
	}
	return out
}

// Write prints diags to w with source snippets.
func Write(w io.Writer, sources *Sources, diags hcl.Diagnostics, color bool) error {
	var files map[string]*hcl.File
	if sources != nil {
		files = sources.Files()
	}
	return hcl.NewDiagnosticTextWriter(w, files, 78, color).WriteDiagnostics(diags)
}
