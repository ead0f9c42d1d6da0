package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Daskott/addressbook/server/auth"
	"github.com/Daskott/addressbook/server/auth/key"
	"github.com/Daskott/addressbook/server/models"
	"github.com/Daskott/addressbook/server/work"
	"github.com/Daskott/addressbook/utils"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	robfigCron "github.com/robfig/cron/v3"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func writeErrorResponse(rw http.ResponseWriter, err error, statusCode int) {
	writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, statusCode)
}

// writeValidationErrors responds with one message per failed field
func writeValidationErrors(rw http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		writeErrorResponse(rw, err, http.StatusBadRequest)
		return
	}

	errs := []string{}
	for _, fieldErr := range validationErrs {
		errs = append(errs, validationMessage(fieldErr))
	}

	writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldErr.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fieldErr.Field(), fieldErr.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fieldErr.Field())
	case "past_date":
		return fmt.Sprintf("%s must be in the past", fieldErr.Field())
	case "e164":
		return fmt.Sprintf("%s must be an E.164 phone number e.g. +14165550100", fieldErr.Field())
	case "cron":
		return fmt.Sprintf("%s must be a valid 5 field cron expression", fieldErr.Field())
	default:
		return fmt.Sprintf("%s failed on the '%s' validation", fieldErr.Field(), fieldErr.Tag())
	}
}

// decodeRequestBody decodes & validates the JSON body into 'data'.
// It writes a 400 response and returns false if either step fails.
func decodeRequestBody(rw http.ResponseWriter, r *http.Request, data interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(data)
	if err != nil {
		writeErrorResponse(rw, fmt.Errorf("invalid request body: %v", err), http.StatusBadRequest)
		return false
	}

	err = validate.Struct(data)
	if err != nil {
		writeValidationErrors(rw, err)
		return false
	}

	return true
}

func idFromPath(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}

	return uint(id), nil
}

// queryInt returns the query param 'name' as an int, or 'defaultValue' if it's not set
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}

	return parsed, nil
}

func requestUserID(r *http.Request) uint {
	userID, _ := r.Context().Value(RequestContextKey("requestUserID")).(uint)
	return userID
}

// ---------------------------------------------------------------------------------//
// Validation
// --------------------------------------------------------------------------------//

func newValidator() *validator.Validate {
	validate := validator.New()

	// Report fields by their json name
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Validate models.Date as the time.Time it wraps
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if date, ok := field.Interface().(models.Date); ok {
			return date.Time
		}
		return nil
	}, models.Date{})

	err := RegisterValidators(validate)
	if err != nil {
		logg.Panic(err)
	}

	return validate
}

func RegisterValidators(validate *validator.Validate) error {
	// The date must be before today (UTC)
	err := validate.RegisterValidation("past_date", func(fl validator.FieldLevel) bool {
		date, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return date.Before(models.DateOf(time.Now()).Time)
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := robfigCron.ParseStandard(fl.Field().String())
		return err == nil
	})
	if err != nil {
		return err
	}

	return nil
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string, keyPair *key.KeyPair) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], keyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	if _, err := tokenClaims.UserID(); err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims}
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("Addressbook server is listening on port:%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, backup *sqliteBackup) {
	// Stop all jobs i.e. reminders & regular server jobs
	workerPool.Stop()

	if backup != nil {
		if err := backup.upload(context.Background()); err != nil {
			logg.Error(err)
		}
	}

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Addressbook server shutdown failed:%+s", err)
	}

	logg.Infof("Addressbook server stopped properly")
}

// configDirectory retrieves the directory to store addressbook data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use '.addressbook' folder in home directory for prod
	configFolderName := ".addressbook"
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
