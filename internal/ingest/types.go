package ingest

// Walk limits
const (
	MaxFiles          = 10000
	MaxDirectoryDepth = 20
)

// KnownHosts are the git forges accepted by the parser
var KnownHosts = map[string]bool{
	"github.com":    true,
	"gitlab.com":    true,
	"bitbucket.org": true,
	"codeberg.org":  true,
	"gitea.com":     true,
	"gitee.com":     true,
}

// DefaultHost is assumed for owner/repo slugs
const DefaultHost = "github.com"

// IgnoreDirs are directories to skip during file discovery
var IgnoreDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".nuxt":        true,
	".idea":        true,
	".vscode":      true,
}

// DefaultIgnorePatterns are gitignore-style patterns applied to every ingestion
var DefaultIgnorePatterns = []string{
	"*.pyc",
	"*.pyo",
	"*.class",
	"*.o",
	"*.so",
	"*.dll",
	"*.dylib",
	"*.exe",
	"*.jar",
	"*.egg-info",
	"*.min.js",
	"*.min.css",
	"*.map",
	"*.png",
	"*.jpg",
	"*.jpeg",
	"*.gif",
	"*.ico",
	"*.svg",
	"*.webp",
	"*.pdf",
	"*.zip",
	"*.tar",
	"*.gz",
	"*.tgz",
	"*.7z",
	"*.woff",
	"*.woff2",
	"*.ttf",
	"*.eot",
	".DS_Store",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"poetry.lock",
	"Cargo.lock",
	"go.sum",
}
