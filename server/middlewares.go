package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Daskott/addressbook/colors"
	"github.com/google/uuid"
)

const REQUEST_ID_HEADER = "X-Request-ID"

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         http.StatusOK,
		}

		requestID := r.Header.Get(REQUEST_ID_HEADER)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(REQUEST_ID_HEADER, requestID)

		defer func() {
			responseStatus := colors.Green(responseWriter.Status)
			if responseWriter.Status >= http.StatusBadRequest {
				responseStatus = colors.Red(responseWriter.Status)
			}

			logg.Infof("%v %v %v %v request_id=%v",
				r.Method,
				r.RequestURI,
				responseStatus,
				colors.Yellow(fmt.Sprintf("[%v]", time.Since(start))),
				requestID,
			)
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

func (s *Server) initialContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")

		// Add decoded token to request context
		ctx := context.WithValue(r.Context(), RequestContextKey("decodedJWT"),
			decodeAndVerifyAuthHeader(r.Header.Get("Authorization"), s.keyPair))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// protectedRouteMiddleware rejects requests without a valid token and
// adds the caller's user id to the request context
func protectedRouteMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodedJWT, ok := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
		if !ok {
			writeResponse(w, ResponsePayload{Errors: []string{"no token provided"}}, http.StatusUnauthorized)
			return
		}

		if decodedJWT.ErrorMsg != "" {
			writeResponse(w, ResponsePayload{Errors: []string{decodedJWT.ErrorMsg}}, http.StatusUnauthorized)
			return
		}

		userID, err := decodedJWT.Claims.UserID()
		if err != nil {
			writeResponse(w, ResponsePayload{Errors: []string{"invalid token provided"}}, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), RequestContextKey("requestUserID"), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
