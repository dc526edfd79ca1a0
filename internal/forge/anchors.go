package forge

import (
	"laravel-api-forge/internal/patcher"
)

// Files touched by the steps, relative to the project root.
const (
	pestFile          = "tests/Pest.php"
	userModelFile     = "app/Models/User.php"
	bootstrapFile     = "bootstrap/app.php"
	permissionFile    = "config/permission.php"
	modulesConfigFile = "config/modules.php"
	composerFile      = "composer.json"
	cacheMigration    = "database/migrations/0001_01_01_000001_create_cache_table.php"
	viteConfigFile    = "vite.config.js"
	viteLoaderFile    = "vite-module-loader.js"
	hooksDir          = ".git-hooks"
)

var exampleTests = []string{
	"tests/Feature/ExampleTest.php",
	"tests/Unit/ExampleTest.php",
}

// Anchors of the generated Laravel skeleton. Each pair is literal; anchors that
// keep their search text are only applied once.
var (
	pestAnchors = []patcher.Replacement{
		patcher.R(`// ->use(Illuminate\Foundation\Testing\RefreshDatabase::class)`,
			`->use(Illuminate\Foundation\Testing\LazilyRefreshDatabase::class)`),
	}

	sanctumUserAnchors = []patcher.Replacement{
		patcher.R(`use Illuminate\Foundation\Auth\User as Authenticatable;`,
			"use Illuminate\\Foundation\\Auth\\User as Authenticatable;\nuse Laravel\\Sanctum\\HasApiTokens;"),
		patcher.R("use HasFactory, Notifiable;", "use HasApiTokens, HasFactory, Notifiable;"),
	}

	rolesUserAnchors = []patcher.Replacement{
		patcher.R(`use Laravel\Sanctum\HasApiTokens;`,
			"use Laravel\\Sanctum\\HasApiTokens;\nuse Spatie\\Permission\\Traits\\HasRoles;"),
		patcher.R("use HasApiTokens, HasFactory, Notifiable;", "use HasApiTokens, HasFactory, HasRoles, Notifiable;"),
	}

	bootstrapAnchors = []patcher.Replacement{
		patcher.R("health: '/up',", "health: '/up',\n        apiPrefix: 'v1',"),
	}

	redisEnvAnchors = []patcher.Replacement{
		patcher.R("CACHE_STORE=database", "CACHE_STORE=redis"),
	}

	permissionAnchors = []patcher.Replacement{
		patcher.R("'teams' => false,", "'teams' => true,"),
	}

	modulesConfigAnchors = []patcher.Replacement{
		patcher.R("'modules' => base_path('Modules'),", "'modules' => base_path('modules'),"),
	}
)

// sailEnvAnchors switch the database from SQLite to the Sail MySQL service.
func sailEnvAnchors(project string) []patcher.Replacement {
	return []patcher.Replacement{
		patcher.R("DB_CONNECTION=sqlite", "DB_CONNECTION=mysql"),
		patcher.R("# DB_HOST=127.0.0.1", "DB_HOST=mysql"),
		patcher.R("# DB_PORT=3306", "DB_PORT=3306"),
		patcher.R("# DB_DATABASE=laravel", "DB_DATABASE="+project),
		patcher.R("# DB_USERNAME=root", "DB_USERNAME=sail"),
		patcher.R("# DB_PASSWORD=", "DB_PASSWORD=password"),
	}
}

// Spectator reads API specs from SPEC_PATH.
const spectatorEnvBlock = "\nSPEC_PATH=docs\n"

// composer.json scripts.
const (
	autoloadDumpEvent = "post-autoload-dump"
	hooksPathScript   = "git config --local core.hooksPath .git-hooks/ || exit 0"
	packageDiscover   = "@php artisan package:discover --ansi"
	rbacResetScript   = "@php artisan rbac:reset"
	mergePlugin       = "wikimedia/composer-merge-plugin"
	modulesManifests  = "modules/*/composer.json"
)
