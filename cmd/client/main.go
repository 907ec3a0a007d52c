// Command client issues a single user-creation request against a running
// server and prints the JSON response.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8080", "server base URL")
	name := flag.String("name", "user_6", "user name to create")
	pass := flag.String("password", "1234", "password for the new user")
	flag.Parse()

	body, err := json.Marshal(map[string]string{
		"name":     *name,
		"password": *pass,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(*addr+"/users/", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "post user: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s %s\n", resp.Status, payload)
}
