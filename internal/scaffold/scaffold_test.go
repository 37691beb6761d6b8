package scaffold

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_FastAPIBase(t *testing.T) {
	g := NewGenerator()
	tasks := []string{"Create API endpoints"}

	files := g.Generate(tasks, "python", "fastapi", "")

	require.Contains(t, files, "main.py")
	require.Contains(t, files, "requirements.txt")
	require.Contains(t, files, "Dockerfile")
	require.Contains(t, files, "README.md")
	assert.NotContains(t, files, "models.py")
	assert.NotContains(t, files, "auth.py")

	assert.Contains(t, files["main.py"], "FastAPI(")
	assert.Contains(t, files["main.py"], "/health")
	assert.Contains(t, files["main.py"], "CORSMiddleware")
	assert.Contains(t, files["README.md"], "- Create API endpoints")
}

func TestGenerate_DatabaseBranch(t *testing.T) {
	g := NewGenerator()
	tasks := []string{"Build the product database layer"}

	files := g.Generate(tasks, "python", "fastapi", "")

	require.Contains(t, files, "models.py")
	require.Contains(t, files, "database.py")
	assert.Contains(t, files["main.py"], "create_item")
	assert.Contains(t, files["main.py"], "from database import get_db")
}

func TestGenerate_ModelKeywordTriggersDatabase(t *testing.T) {
	g := NewGenerator()
	files := g.Generate([]string{"Define the Order model"}, "python", "fastapi", "")
	assert.Contains(t, files, "models.py")
}

func TestGenerate_AuthBranch(t *testing.T) {
	g := NewGenerator()
	tasks := []string{"Create API endpoints", "Add user authentication"}

	files := g.Generate(tasks, "python", "fastapi", "")

	require.Contains(t, files, "auth.py")
	assert.Contains(t, files["main.py"], "auth_router")
	assert.Contains(t, files["requirements.txt"], "python-jose")
	assert.Contains(t, files["requirements.txt"], "passlib")
}

func TestGenerate_AdditionalRequirementsAppended(t *testing.T) {
	g := NewGenerator()
	files := g.Generate([]string{"API"}, "python", "fastapi", "httpx==0.25.0\nredis==5.0.0")

	assert.Contains(t, files["requirements.txt"], "httpx==0.25.0")
	assert.Contains(t, files["requirements.txt"], "redis==5.0.0")
}

func TestGenerate_NextJS(t *testing.T) {
	g := NewGenerator()
	files := g.Generate([]string{"Landing page"}, "javascript", "nextjs", "")

	require.Contains(t, files, "package.json")
	require.Contains(t, files, "pages/index.js")
	assert.Contains(t, files["package.json"], `"next"`)
}

func TestGenerate_GenericFallback(t *testing.T) {
	g := NewGenerator()
	files := g.Generate([]string{"CLI tool"}, "rust", "actix", "")

	require.Contains(t, files, "README.md")
	require.Contains(t, files, "main.rs")
	assert.Contains(t, files["README.md"], "rust actix")
}

func TestGenerate_Deterministic(t *testing.T) {
	tasks := []string{"Create API endpoints", "Add user authentication"}

	a := NewGenerator().Generate(tasks, "python", "fastapi", "")
	b := NewGenerator().Generate(tasks, "python", "fastapi", "")

	assert.Equal(t, a, b)
}

func TestGenerate_CachedResultIsolated(t *testing.T) {
	g := NewGenerator()
	tasks := []string{"Create API endpoints"}

	first := g.Generate(tasks, "python", "fastapi", "")
	first["main.py"] = "mutated"

	second := g.Generate(tasks, "python", "fastapi", "")
	assert.NotEqual(t, "mutated", second["main.py"])
	assert.True(t, strings.Contains(second["main.py"], "FastAPI("))
}

func TestGenerate_CaseInsensitiveLanguageFramework(t *testing.T) {
	g := NewGenerator()
	files := g.Generate([]string{"API"}, "Python", "FastAPI", "")
	assert.Contains(t, files, "main.py")
	assert.Contains(t, files["main.py"], "uvicorn")
}
