package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/dasmlab/pharmagen/pkg/server"
	"github.com/sirupsen/logrus"
)

var (
	serverAddr = flag.String("addr", "localhost:50051", "gRPC server address")
	language   = flag.String("lang", "", "Response language tag (e.g., en, es-MX, auto)")
	questionF  = flag.String("file", "", "Path to a file containing the question")
	question   = flag.String("q", "", "Question to ask (if file not provided)")
	timeout    = flag.Duration("timeout", 90*time.Second, "Request timeout")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	// Read the question
	var text string
	if *questionF != "" {
		data, err := os.ReadFile(*questionF)
		if err != nil {
			logger.WithError(err).Fatalf("Failed to read file: %s", *questionF)
		}
		text = string(data)
	} else if *question != "" {
		text = *question
	} else {
		logger.Fatal("Either -file or -q must be provided")
	}

	logger.WithFields(logrus.Fields{
		"server":          *serverAddr,
		"language":        *language,
		"question_length": len(text),
	}).Info("Connecting to PharmaGEN server...")

	conn, err := grpc.NewClient(*serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to server")
	}
	defer conn.Close()

	client := server.NewAssistantClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	startTime := time.Now()
	resp, err := client.Ask(ctx, text, *language)
	if err != nil {
		st, _ := status.FromError(err)
		logger.WithFields(logrus.Fields{
			"code":    st.Code().String(),
			"message": st.Message(),
		}).Fatal("Ask failed")
	}
	duration := time.Since(startTime)

	separator := strings.Repeat("=", 80)
	dashLine := strings.Repeat("-", 80)

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("PHARMAGEN ANSWER")
	fmt.Println(separator)
	fmt.Printf("\nRequest ID: %s\n", resp.RequestID)
	fmt.Printf("Language:   %s\n", resp.Language)
	fmt.Printf("Duration:   %.2f seconds\n", duration.Seconds())
	fmt.Println()
	fmt.Println(dashLine)
	fmt.Println("QUESTION:")
	fmt.Println(dashLine)
	fmt.Println(strings.TrimSpace(text))
	fmt.Println()
	fmt.Println(dashLine)
	fmt.Println("ANSWER:")
	fmt.Println(dashLine)
	fmt.Println(resp.Answer)
	fmt.Println()
	fmt.Println(separator)

	logger.WithFields(logrus.Fields{
		"request_id":       resp.RequestID,
		"duration_seconds": duration.Seconds(),
	}).Info("Question answered successfully")
}
