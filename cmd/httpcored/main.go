// Command httpcored is an example server binary built on httpcore. It
// echoes the request method, target, and body back to the caller, mainly
// useful for exercising the connection driver and handoff body path by
// hand with curl.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/student/httpcore"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	addr            string
	readTimeoutFlag string
	maxConnsPerIP   int
)

var rootCmd = &cobra.Command{
	Use:   "httpcored",
	Short: "Run an example httpcore server",
	RunE: func(cmd *cobra.Command, args []string) error {
		readTimeout := cast.ToDuration(readTimeoutFlag)

		srv := &httpcore.Server{
			Handler:       echoHandler,
			Name:          "httpcored",
			ReadTimeout:   readTimeout,
			MaxConnsPerIP: maxConnsPerIP,
			Logger:        httpcore.NewDefaultLogger(),
		}
		return srv.ListenAndServe(addr)
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	rootCmd.Flags().StringVar(&readTimeoutFlag, "read-timeout", "30s", "per-request read timeout")
	rootCmd.Flags().IntVar(&maxConnsPerIP, "max-conns-per-ip", 0, "maximum connections per client IP, 0 disables the limit")
}

func echoHandler(ctx context.Context, req *httpcore.Request) (*httpcore.Response, error) {
	body, err := req.Body.Bytes()
	if err != nil {
		return nil, err
	}

	resp := httpcore.NewResponse()
	resp.Header.Insert([]byte("X-Served-At"), []byte(time.Now().UTC().Format(time.RFC3339)))

	var out []byte
	out = append(out, req.Method...)
	out = append(out, ' ')
	out = append(out, req.Target...)
	out = append(out, ' ')
	out = append(out, body...)
	resp.Body = httpcore.BytesBody(out)
	return resp, nil
}
