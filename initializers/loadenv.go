package initializers

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadEnv reads a .env file into the process environment. A missing file is
// not an error; deployed environments set variables directly.
func LoadEnv(logger *zap.Logger, filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("no .env file found, using process environment")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("env loaded from file")
	return nil
}
