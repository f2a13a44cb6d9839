package render

// Theme holds the palette of a card
type Theme struct {
	Background    string
	Border        string
	Title         string
	Text          string
	Muted         string
	BarBackground string
}

const (
	DefaultTheme   = "dark"
	LayoutPortrait = "portrait"

	defaultLanguageColor  = "#8b8b8b"
	defaultFrameworkColor = "#555555"
)

var themes = map[string]Theme{
	"light": {
		Background: "#ffffff", Border: "#d0d7de", Title: "#0969da",
		Text: "#24292f", Muted: "#656d76", BarBackground: "#eaeef2",
	},
	"dark": {
		Background: "#0d1117", Border: "#30363d", Title: "#58a6ff",
		Text: "#c9d1d9", Muted: "#8b949e", BarBackground: "#21262d",
	},
	"radical": {
		Background: "#141321", Border: "#fe428e", Title: "#fe428e",
		Text: "#a9fef7", Muted: "#f8d847", BarBackground: "#2a2139",
	},
	"tokyonight": {
		Background: "#1a1b27", Border: "#70a5fd", Title: "#70a5fd",
		Text: "#38bdae", Muted: "#a9b1d6", BarBackground: "#24283b",
	},
}

// github linguist colors
var languageColors = map[string]string{
	"TypeScript": "#3178c6", "JavaScript": "#f1e05a", "Python": "#3572A5",
	"HTML": "#e34c26", "CSS": "#563d7c", "PHP": "#4F5D95",
	"Kotlin": "#A97BFF", "Java": "#b07219", "C++": "#f34b7d",
	"C": "#555555", "C#": "#178600", "Vue": "#41b883",
	"Svelte": "#ff3e00", "Shell": "#89e051", "Dockerfile": "#384d54",
	"Go": "#00ADD8", "Ruby": "#701516", "Rust": "#dea584",
	"Swift": "#F05138", "Dart": "#00B4AB", "SCSS": "#c6538c",
}

var frameworkColors = map[string]string{
	"React": "#61dafb", "React Native": "#61dafb", "Next.js": "#808080",
	"Nuxt.js": "#00dc82", "Vue.js": "#41b883", "Angular": "#dd1b16",
	"Svelte": "#ff3e00", "Express.js": "#808080", "NestJS": "#e0234e",
	"Fastify": "#808080", "Electron": "#47848f", "Capacitor": "#119eff",
	"Ionic": "#3880ff", "Cordova": "#808080", "Tailwind CSS": "#06b6d4",
	"Bootstrap": "#7952b3", "Sass": "#cf649a", "Redux": "#764abc",
	"Pinia": "#ffd859", "Vite": "#646cff", "Webpack": "#8dd6f9",
	"Jest": "#c21325", "Vitest": "#6e9f18", "Cypress": "#69d3a7",
	"Prisma": "#5567e0", "Mongoose": "#880000", "Django": "#44b78b",
	"FastAPI": "#009688", "Flask": "#808080", "Laravel": "#ff2d20",
	"Spring Boot": "#6db33f", "Android SDK": "#3ddc84", "Flutter": "#02569b",
	"Rails": "#cc0000", "Scrapy": "#60a839", "PyTorch": "#ee4c2c",
	"TensorFlow": "#ff6f00", "Pandas": "#150458", "NumPy": "#4d77cf",
	"Gin": "#00ADD8", "Fiber": "#00ACD7", "Echo": "#00ADD8", "GORM": "#38b6ff",
	"Docker": "#2496ed", "Kubernetes": "#326ce5", "GitHub Actions": "#2088ff",
	"Tokio": "#808080", "Actix Web": "#808080", "SvelteKit": "#ff3e00",
	"Astro": "#ff5d01", "Symfony": "#808080", "Chi": "#00ADD8", "Cobra": "#00ADD8",
}

// GetTheme returns the named theme, unknown names fall back to the dark theme
func GetTheme(name string) Theme {
	if theme, ok := themes[name]; ok {
		return theme
	}

	return themes[DefaultTheme]
}

func languageColor(name string) string {
	if color, ok := languageColors[name]; ok {
		return color
	}

	return defaultLanguageColor
}

func frameworkColor(name string) string {
	if color, ok := frameworkColors[name]; ok {
		return color
	}

	return defaultFrameworkColor
}
