package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	grpchandlers "stock-ticker/internal/grpc"
	"stock-ticker/pkg/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	serverAddr := flag.String("addr", "127.0.0.1:9090", "ticker gRPC address")
	flag.Parse()

	conn, err := grpc.NewClient(*serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		log.Fatalf("Failed to create client for %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	client := grpchandlers.NewClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_, err = client.GetStatus(ctx, grpc.WaitForReady(true))
	cancel()
	if err != nil {
		log.Printf("Ticker at %s is not answering yet: %v", *serverAddr, err)
	}

	fmt.Println("Stock Ticker CLI")
	fmt.Println("Connected to ticker at", *serverAddr)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("Available commands:")
		fmt.Println("1. status   - Show what the ticker is displaying")
		fmt.Println("2. watch    - Follow ticker updates (Ctrl+C to stop)")
		fmt.Println("3. refresh  - Poll quotes now instead of waiting")
		fmt.Println("4. help     - Show this help")
		fmt.Println("5. quit     - Exit the application")
		fmt.Print("\nEnter command: ")

		if !scanner.Scan() {
			break
		}

		parts := strings.Fields(strings.TrimSpace(scanner.Text()))
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "1", "status":
			showStatus(client)

		case "2", "watch":
			watchUpdates(client)

		case "3", "refresh":
			refresh(client)

		case "4", "help":
			continue

		case "5", "quit", "exit":
			fmt.Println("Goodbye!")
			return

		default:
			fmt.Printf("Unknown command: %s\n", parts[0])
		}

		fmt.Println()
	}
}

func showStatus(client *grpchandlers.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update, err := client.GetStatus(ctx)
	if err != nil {
		log.Printf("Error getting status: %v", err)
		return
	}
	printUpdate(update)
}

func watchUpdates(client *grpchandlers.Client) {
	fmt.Println("Watching ticker updates (Press Ctrl+C to stop)")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := client.WatchUpdates(ctx)
	if err != nil {
		log.Printf("Error watching updates: %v", err)
		return
	}

	for {
		update, err := stream.Recv()
		if err != nil {
			log.Printf("Error receiving update: %v", err)
			break
		}
		printUpdate(update)
		fmt.Println(strings.Repeat("-", 40))
	}
}

func refresh(client *grpchandlers.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Refresh(ctx); err != nil {
		log.Printf("Error requesting refresh: %v", err)
		return
	}
	fmt.Println("Refresh queued")
}

func printUpdate(update *models.Update) {
	fmt.Printf("[%s] %s\n", update.Timestamp.Local().Format("15:04:05"), update.Status)
	fmt.Printf("Scrolling: %s\n", strings.TrimSpace(update.Text))

	for _, q := range update.Quotes {
		if !q.HasData() {
			fmt.Printf("  %-6s no data yet\n", q.ID)
			continue
		}
		fmt.Printf("  %-6s $%.2f  %+.2f%%  (%+.2f)\n", q.ID, q.Price, q.ChangePercent, q.Change)
	}
}
