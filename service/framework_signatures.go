package service

// dependency name (lowercase) to framework name, per manifest kind

var packageJSONSignatures = map[string]string{
	"react": "React", "react-native": "React Native", "expo": "React Native",
	"next": "Next.js", "nuxt": "Nuxt.js", "vue": "Vue.js",
	"svelte": "Svelte", "@angular/core": "Angular",
	"express": "Express.js", "@nestjs/core": "NestJS", "fastify": "Fastify",
	"koa": "Koa", "jquery": "jQuery",
	"electron": "Electron", "@capacitor/core": "Capacitor",
	"@capacitor/cli": "Capacitor", "@ionic/core": "Ionic",
	"@ionic/vue": "Ionic", "@ionic/react": "Ionic",
	"@ionic/angular": "Ionic", "cordova": "Cordova",
	"tailwindcss": "Tailwind CSS", "bootstrap": "Bootstrap",
	"bulma": "Bulma", "sass": "Sass", "node-sass": "Sass",
	"redux": "Redux", "@reduxjs/toolkit": "Redux",
	"pinia": "Pinia", "vuex": "Vuex", "mobx": "MobX",
	"webpack": "Webpack", "vite": "Vite", "rollup": "Rollup",
	"parcel": "Parcel", "jest": "Jest", "cypress": "Cypress",
	"mocha": "Mocha", "vitest": "Vitest",
	"prisma": "Prisma", "@prisma/client": "Prisma",
	"mongoose": "Mongoose", "typeorm": "TypeORM", "sequelize": "Sequelize",
}

var pythonSignatures = map[string]string{
	"django": "Django", "fastapi": "FastAPI", "flask": "Flask",
	"tornado": "Tornado", "pandas": "Pandas", "numpy": "NumPy",
	"scikit-learn": "Scikit-learn", "tensorflow": "TensorFlow",
	"torch": "PyTorch", "pytorch": "PyTorch", "keras": "Keras",
	"matplotlib": "Matplotlib", "streamlit": "Streamlit",
	"pytest": "Pytest", "sqlalchemy": "SQLAlchemy",
	"scrapy": "Scrapy", "kivy": "Kivy", "flet": "Flet",
}

var composerSignatures = map[string]string{
	"laravel/framework": "Laravel", "symfony/symfony": "Symfony",
	"codeigniter4/framework": "CodeIgniter", "yiisoft/yii2": "Yii",
	"cakephp/cakephp": "CakePHP", "livewire/livewire": "Livewire",
}

// go module path prefixes, major version suffixes are ignored
var goModSignatures = map[string]string{
	"github.com/gin-gonic/gin": "Gin", "github.com/gofiber/fiber": "Fiber",
	"github.com/labstack/echo": "Echo", "gorm.io/gorm": "GORM",
	"github.com/go-chi/chi": "Chi", "github.com/spf13/cobra": "Cobra",
}

var jvmBuildSignatures = map[string]string{
	"spring-boot": "Spring Boot", "hibernate": "Hibernate",
	"com.android.application": "Android SDK",
}

var pubspecSignatures = map[string]string{
	"flutter": "Flutter", "flutter_bloc": "Bloc", "flutter_riverpod": "Riverpod",
}

var gemfileSignatures = map[string]string{
	"rails": "Rails", "sinatra": "Sinatra",
}

var cargoSignatures = map[string]string{
	"actix-web": "Actix Web", "axum": "Axum", "rocket": "Rocket",
	"tokio": "Tokio", "tauri": "Tauri", "bevy": "Bevy",
}

// rootFileMarkers detects tools from the root directory listing only
var rootFileMarkers = []struct {
	framework string
	matches   func(name string) bool
}{
	{"Docker", oneOf("dockerfile", "docker-compose.yml", "docker-compose.yaml", "compose.yaml")},
	{"Tailwind CSS", oneOf("tailwind.config.js", "tailwind.config.ts")},
	{"Next.js", oneOf("next.config.js", "next.config.ts", "next.config.mjs")},
	{"SvelteKit", oneOf("svelte.config.js")},
	{"Astro", oneOf("astro.config.mjs", "astro.config.js")},
	{"Prisma", oneOf("prisma")},
	{"Kubernetes", hasSuffix(".k8s.yaml", "deployment.yaml")},
}
