package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AkashSundaramoorthi/Haven/registry"
	"github.com/AkashSundaramoorthi/Haven/server/auth"
	"github.com/AkashSundaramoorthi/Haven/utils"
	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	}

	if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func RegisterValidators(validate *validator.Validate) error {
	return validate.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		return isValidPhoneNumber(fl.Field().String())
	})
}

// isValidPhoneNumber accepts numbers with formatting characters, as long
// as enough digits survive normalization.
func isValidPhoneNumber(phoneNumber string) bool {
	digits := registry.NormalizePhoneNumber(phoneNumber)
	return len(digits) >= 3 && len(digits) <= 15
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims}
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("Haven server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(server *http.Server, scheduler *gocron.Scheduler) {
	// Stop coordinator first so no trigger can start a dispatch while
	// the server is going away.
	coord.Stop()
	scheduler.Stop()

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Haven server shutdown failed:%+s", err)
	}

	logg.Infof("Haven server stopped properly")
}

// configDirectory retrieves the directory holding haven's db & configs,
// or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'haven' folder in home directory for prod
	configFolderName := "haven"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
