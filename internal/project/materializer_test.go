package project

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMaterializer(t *testing.T) *Materializer {
	t.Helper()
	m := NewMaterializer(t.TempDir())
	m.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	m.newUUID = func() string { return "12345678-abcd-abcd-abcd-1234567890ab" }
	return m
}

func TestMaterializer_Create(t *testing.T) {
	m := newTestMaterializer(t)
	files := map[string]string{
		"main.py":          "print('hello')\n",
		"app/routes.py":    "routes = []\n",
		"requirements.txt": "fastapi\n",
	}

	proj, err := m.Create(files, []string{"Create API endpoints"}, "python", "fastapi", "pip install -r requirements.txt", "ai_agents")
	require.NoError(t, err)

	assert.Equal(t, "12345678-abcd-abcd-abcd-1234567890ab", proj.UUID)
	assert.Equal(t, "ai_generated_python_fastapi_12345678", proj.Name)
	assert.Equal(t, []string{filepath.Join("app", "routes.py"), "main.py", "requirements.txt"}, proj.Files)

	content, err := os.ReadFile(filepath.Join(proj.Path, "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hello')\n", string(content))

	nested, err := os.ReadFile(filepath.Join(proj.Path, "app", "routes.py"))
	require.NoError(t, err)
	assert.Equal(t, "routes = []\n", string(nested))
}

func TestMaterializer_Metadata(t *testing.T) {
	m := newTestMaterializer(t)
	tasks := []string{"Create API endpoints", "Add user authentication"}

	proj, err := m.Create(map[string]string{"main.py": "pass"}, tasks, "python", "fastapi", "run uvicorn", "template_fallback")
	require.NoError(t, err)

	meta, err := ReadMetadata(proj.Path)
	require.NoError(t, err)
	assert.Equal(t, proj.UUID, meta.ProjectUUID)
	assert.Equal(t, proj.Name, meta.ProjectName)
	assert.Equal(t, "2024-06-01T12:00:00Z", meta.GeneratedAt)
	assert.Equal(t, "python", meta.Language)
	assert.Equal(t, "fastapi", meta.Framework)
	assert.Equal(t, "template_fallback", meta.GenerationMethod)
	assert.Equal(t, "run uvicorn", meta.SetupInstructions)
	assert.Equal(t, []string{"main.py"}, meta.Files)
	assert.Equal(t, tasks, meta.Tasks)
}

func TestMaterializer_RejectsTraversal(t *testing.T) {
	m := newTestMaterializer(t)

	cases := []string{"../escape.py", "/etc/passwd", "a/../../escape.py", ""}
	for _, path := range cases {
		_, err := m.Create(map[string]string{path: "x"}, nil, "python", "fastapi", "", "ai_agents")
		assert.Error(t, err, "path %q should be rejected", path)
	}
}

func TestMaterializer_EmptyBundle(t *testing.T) {
	m := newTestMaterializer(t)
	_, err := m.Create(map[string]string{}, nil, "python", "fastapi", "", "ai_agents")
	assert.Error(t, err)
}

func TestArchive(t *testing.T) {
	m := newTestMaterializer(t)
	proj, err := m.Create(map[string]string{
		"main.py":       "print('x')",
		"docs/guide.md": "# guide",
	}, nil, "python", "fastapi", "", "ai_agents")
	require.NoError(t, err)

	archivePath, err := Archive(proj.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(archivePath, ".tar.gz"))

	f, err := os.Open(archivePath)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
	}

	assert.Contains(t, names, proj.Name+"/main.py")
	assert.Contains(t, names, proj.Name+"/docs/guide.md")
	assert.Contains(t, names, proj.Name+"/"+MetadataFileName)
}

func TestArchive_MissingDir(t *testing.T) {
	_, err := Archive(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
