package dotenv

import (
	"os"
	"regexp"

	"github.com/joho/godotenv"
)

// ProdEnv is the value of WREN_ENV that marks a production deployment.
const ProdEnv = "prod"

// LoadDotEnvs loads the .env files following the convention:
// https://github.com/bkeepers/dotenv#what-other-env-files-can-i-use
// It only needs to be called once in the main function; other code reads
// configuration through os.Getenv during runtime.
func LoadDotEnvs() error {
	loadDotEnvs("")
	return nil
}

func loadDotEnvs(rootPath string) {
	env := os.Getenv("WREN_ENV")
	if env == "" {
		env = "dev"
	}

	// .env.[runtime_env].local has highest priority, usually contains
	// credentials and other sensitive information
	godotenv.Load(rootPath + ".env." + env + ".local")
	godotenv.Load(rootPath + ".env.local")
	// .env.[runtime_env] usually contains store connection information
	godotenv.Load(rootPath + ".env." + env)
	// .env contains shared variables (which might be overwritten by the
	// files above)
	godotenv.Load(rootPath + ".env")
}

// LoadDotEnvsInTests walks up from the test's working directory to the
// repository root before loading, due to a known issue of godotenv:
// https://github.com/joho/godotenv/issues/43
func LoadDotEnvsInTests() error {
	re := regexp.MustCompile(`^(.*wren)`)
	cwd, _ := os.Getwd()
	rootPath := re.Find([]byte(cwd))

	godotenv.Load(string(rootPath) + "/" + ".env.test")
	return nil
}
