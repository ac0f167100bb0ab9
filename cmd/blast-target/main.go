// blast-target is a throwaway HTTP server for exercising the load generator
// locally: it can delay, fail with a chosen status, or stream a body of a
// chosen size.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
)

const defaultPort = "8081"

func main() {
	port := getEnv("PORT", defaultPort)

	router := mux.NewRouter()
	router.HandleFunc("/", handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/delay/{ms:[0-9]+}", handleDelay).Methods(http.MethodGet)
	router.HandleFunc("/status/{code:[0-9]+}", handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/bytes/{n:[0-9]+}", handleBytes).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting target server on port %s", port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func handleDelay(w http.ResponseWriter, r *http.Request) {
	ms, _ := strconv.Atoi(mux.Vars(r)["ms"])
	time.Sleep(time.Duration(ms) * time.Millisecond)
	w.Write([]byte("delayed"))
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	code, _ := strconv.Atoi(mux.Vars(r)["code"])
	if code < 100 || code > 599 {
		http.Error(w, "status out of range", http.StatusBadRequest)
		return
	}
	w.WriteHeader(code)
}

func handleBytes(w http.ResponseWriter, r *http.Request) {
	n, _ := strconv.Atoi(mux.Vars(r)["n"])

	const chunkSize = 4096
	chunk := make([]byte, chunkSize)
	for i := range chunk {
		chunk[i] = 'x'
	}

	w.Header().Set("Content-Length", strconv.Itoa(n))
	for n > 0 {
		if n < chunkSize {
			w.Write(chunk[:n])
			break
		}
		w.Write(chunk)
		n -= chunkSize
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
