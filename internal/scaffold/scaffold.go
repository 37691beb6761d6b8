// Package scaffold produces deterministic project skeletons without calling
// any text-generation backend. It is the fallback used whenever the AI path
// is unavailable or unusable.
package scaffold

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Generator renders fallback project bundles. Rendering is pure string
// templating plus substring matching over task descriptions, so identical
// inputs always produce byte-identical file sets; the LRU cache only skips
// re-rendering.
type Generator struct {
	cache *lru.Cache[string, map[string]string]
}

// NewGenerator creates a Generator with a bounded render cache.
func NewGenerator() *Generator {
	cache, _ := lru.New[string, map[string]string](64)
	return &Generator{cache: cache}
}

// Generate returns the filename -> content mapping for the requested
// language/framework pair.
func (g *Generator) Generate(tasks []string, language, framework, additionalRequirements string) map[string]string {
	key := cacheKey(tasks, language, framework, additionalRequirements)
	if cached, ok := g.cache.Get(key); ok {
		return cloneBundle(cached)
	}

	var files map[string]string
	switch {
	case strings.EqualFold(language, "python") && strings.EqualFold(framework, "fastapi"):
		files = fastAPIProject(tasks, additionalRequirements)
	case strings.EqualFold(language, "javascript") && strings.EqualFold(framework, "nextjs"):
		files = nextJSProject(tasks)
	default:
		files = genericProject(tasks, language, framework)
	}

	g.cache.Add(key, files)
	return cloneBundle(files)
}

func cacheKey(tasks []string, language, framework, additional string) string {
	h := sha256.New()
	for _, t := range tasks {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(framework))
	h.Write([]byte{0})
	h.Write([]byte(additional))
	return hex.EncodeToString(h.Sum(nil))
}

func cloneBundle(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// hasKeyword reports whether any task mentions one of the keywords.
func hasKeyword(tasks []string, keywords ...string) bool {
	for _, task := range tasks {
		lower := strings.ToLower(task)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func taskList(tasks []string) string {
	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = "- " + t
	}
	return strings.Join(lines, "\n")
}

func fastAPIProject(tasks []string, additionalRequirements string) map[string]string {
	hasAuth := hasKeyword(tasks, "auth")
	hasDatabase := hasKeyword(tasks, "database", "model")

	files := map[string]string{
		"main.py":          fastAPIMain(hasAuth, hasDatabase),
		"requirements.txt": requirementsTxt(hasAuth, additionalRequirements),
		"Dockerfile":       dockerfilePython,
		"README.md":        readme("generated_api", tasks),
	}
	if hasDatabase {
		files["models.py"] = modelsPy
		files["database.py"] = databasePy
	}
	if hasAuth {
		files["auth.py"] = authPy
	}
	return files
}

func fastAPIMain(hasAuth, hasDatabase bool) string {
	var b strings.Builder

	b.WriteString(`"""Generated FastAPI application."""
from datetime import datetime
from typing import List, Optional
from fastapi import FastAPI, HTTPException, Depends, status
from fastapi.middleware.cors import CORSMiddleware
from pydantic import BaseModel
`)
	if hasDatabase {
		b.WriteString(`from sqlalchemy.orm import Session
from database import get_db, create_tables
from models import Item
`)
	}
	if hasAuth {
		b.WriteString(`from auth import router as auth_router, get_current_user
`)
	}

	b.WriteString(`
app = FastAPI(
    title="Generated API",
    description="Auto-generated API based on requirements",
    version="1.0.0"
)

app.add_middleware(
    CORSMiddleware,
    allow_origins=["*"],
    allow_credentials=True,
    allow_methods=["*"],
    allow_headers=["*"],
)
`)
	if hasAuth {
		b.WriteString(`
app.include_router(auth_router, prefix="/auth", tags=["auth"])
`)
	}
	if hasDatabase {
		b.WriteString(`
@app.on_event("startup")
async def startup_event():
    """Initialize database tables."""
    create_tables()
`)
	}

	b.WriteString(`
@app.get("/")
async def root():
    """Root endpoint."""
    return {
        "message": "Generated API is running",
        "timestamp": datetime.utcnow().isoformat(),
        "version": "1.0.0"
    }

@app.get("/health")
async def health_check():
    """Health check endpoint."""
    return {"status": "healthy", "timestamp": datetime.utcnow().isoformat()}
`)

	if hasDatabase {
		b.WriteString(`
class ItemCreate(BaseModel):
    """Item creation model."""
    name: str
    description: Optional[str] = None

class ItemResponse(BaseModel):
    """Item response model."""
    id: int
    name: str
    description: Optional[str]
    created_at: datetime

@app.post("/items/", response_model=ItemResponse)
async def create_item(item: ItemCreate, db: Session = Depends(get_db)):
    """Create a new item."""
    db_item = Item(name=item.name, description=item.description)
    db.add(db_item)
    db.commit()
    db.refresh(db_item)
    return db_item

@app.get("/items/", response_model=List[ItemResponse])
async def list_items(skip: int = 0, limit: int = 100, db: Session = Depends(get_db)):
    """List all items."""
    return db.query(Item).offset(skip).limit(limit).all()

@app.get("/items/{item_id}", response_model=ItemResponse)
async def get_item(item_id: int, db: Session = Depends(get_db)):
    """Get item by ID."""
    item = db.query(Item).filter(Item.id == item_id).first()
    if item is None:
        raise HTTPException(status_code=404, detail="Item not found")
    return item
`)
	}

	b.WriteString(`
if __name__ == "__main__":
    import uvicorn
    uvicorn.run(app, host="0.0.0.0", port=8000)
`)
	return b.String()
}

func requirementsTxt(hasAuth bool, additionalRequirements string) string {
	reqs := []string{
		"fastapi==0.104.1",
		"uvicorn[standard]==0.24.0",
		"pydantic==2.5.0",
		"sqlalchemy==2.0.23",
		"python-multipart==0.0.6",
	}
	if hasAuth {
		reqs = append(reqs, "python-jose[cryptography]==3.3.0", "passlib[bcrypt]==1.7.4")
	}
	if additionalRequirements != "" {
		for _, line := range strings.Split(additionalRequirements, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				reqs = append(reqs, line)
			}
		}
	}
	return strings.Join(reqs, "\n") + "\n"
}

func readme(projectName string, tasks []string) string {
	return fmt.Sprintf(`# %s

Auto-generated FastAPI application based on the following requirements:

## Tasks Implemented
%s

## Setup

1. Install dependencies:
`+"```bash"+`
pip install -r requirements.txt
`+"```"+`

2. Run the application:
`+"```bash"+`
uvicorn main:app --reload
`+"```"+`

3. Visit http://localhost:8000/docs for API documentation

## Docker

Build and run with Docker:
`+"```bash"+`
docker build -t %s .
docker run -p 8000:8000 %s
`+"```"+`
`, titleCase(strings.ReplaceAll(projectName, "_", " ")), taskList(tasks), projectName, projectName)
}

func nextJSProject(tasks []string) map[string]string {
	return map[string]string{
		"package.json": `{
  "name": "generated-app",
  "version": "1.0.0",
  "private": true,
  "scripts": {
    "dev": "next dev",
    "build": "next build",
    "start": "next start"
  },
  "dependencies": {
    "next": "14.0.0",
    "react": "^18.2.0",
    "react-dom": "^18.2.0"
  }
}
`,
		"pages/index.js": `export default function Home() {
  return (
    <main>
      <h1>Generated Application</h1>
      <p>Auto-generated Next.js starter.</p>
    </main>
  );
}
`,
		"README.md": fmt.Sprintf(`# Generated App

Auto-generated Next.js application.

## Tasks Implemented
%s

## Setup

`+"```bash"+`
npm install
npm run dev
`+"```"+`
`, taskList(tasks)),
	}
}

func genericProject(tasks []string, language, framework string) map[string]string {
	source := "main." + sourceExtension(language)
	return map[string]string{
		"README.md": fmt.Sprintf(`# Generated Project

Auto-generated %s %s project skeleton.

## Tasks
%s
`, language, framework, taskList(tasks)),
		source: fmt.Sprintf("// Generated %s %s project\n// TODO: implement the requested features\n", language, framework),
	}
}

func sourceExtension(language string) string {
	switch strings.ToLower(language) {
	case "go", "golang":
		return "go"
	case "javascript":
		return "js"
	case "typescript":
		return "ts"
	case "java":
		return "java"
	case "rust":
		return "rs"
	case "ruby":
		return "rb"
	default:
		return "txt"
	}
}

const dockerfilePython = `FROM python:3.11-slim

WORKDIR /app

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY . .

EXPOSE 8000

CMD ["uvicorn", "main:app", "--host", "0.0.0.0", "--port", "8000"]
`

const modelsPy = `"""Database models."""
from datetime import datetime
from sqlalchemy import Column, Integer, String, DateTime, Text, Boolean
from sqlalchemy.ext.declarative import declarative_base
from sqlalchemy.sql import func

Base = declarative_base()


class Item(Base):
    """Example item model."""
    __tablename__ = "items"

    id = Column(Integer, primary_key=True, index=True)
    name = Column(String(255), nullable=False, index=True)
    description = Column(Text)
    is_active = Column(Boolean, default=True)
    created_at = Column(DateTime(timezone=True), server_default=func.now())
    updated_at = Column(DateTime(timezone=True), onupdate=func.now())
`

const databasePy = `"""Database configuration."""
import os
from sqlalchemy import create_engine
from sqlalchemy.orm import sessionmaker
from models import Base

DATABASE_URL = os.getenv("DATABASE_URL", "sqlite:///./app.db")

engine = create_engine(DATABASE_URL, echo=False)
SessionLocal = sessionmaker(autocommit=False, autoflush=False, bind=engine)


def get_db():
    """Get database session."""
    db = SessionLocal()
    try:
        yield db
    finally:
        db.close()


def create_tables():
    """Create all database tables."""
    Base.metadata.create_all(bind=engine)
`

const authPy = `"""Authentication scaffolding: JWT login with in-memory users."""
from datetime import datetime, timedelta
from fastapi import APIRouter, Depends, HTTPException, status
from fastapi.security import OAuth2PasswordBearer, OAuth2PasswordRequestForm
from jose import JWTError, jwt
from passlib.context import CryptContext

SECRET_KEY = "change-me"
ALGORITHM = "HS256"
ACCESS_TOKEN_EXPIRE_MINUTES = 30

router = APIRouter()
pwd_context = CryptContext(schemes=["bcrypt"], deprecated="auto")
oauth2_scheme = OAuth2PasswordBearer(tokenUrl="auth/login")

fake_users = {
    "admin": pwd_context.hash("admin"),
}


@router.post("/login")
async def login(form_data: OAuth2PasswordRequestForm = Depends()):
    """Issue a JWT for valid credentials."""
    hashed = fake_users.get(form_data.username)
    if not hashed or not pwd_context.verify(form_data.password, hashed):
        raise HTTPException(status_code=401, detail="Invalid credentials")
    expire = datetime.utcnow() + timedelta(minutes=ACCESS_TOKEN_EXPIRE_MINUTES)
    token = jwt.encode({"sub": form_data.username, "exp": expire}, SECRET_KEY, algorithm=ALGORITHM)
    return {"access_token": token, "token_type": "bearer"}


async def get_current_user(token: str = Depends(oauth2_scheme)):
    """Resolve the current user from a bearer token."""
    try:
        payload = jwt.decode(token, SECRET_KEY, algorithms=[ALGORITHM])
        return payload["sub"]
    except (JWTError, KeyError):
        raise HTTPException(status_code=status.HTTP_401_UNAUTHORIZED, detail="Invalid token")
`

// FileNames returns the sorted file list of a bundle, used by callers that
// need a stable ordering.
func FileNames(bundle map[string]string) []string {
	names := make([]string, 0, len(bundle))
	for name := range bundle {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
