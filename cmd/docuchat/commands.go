package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/docuchat/docuchat/internal/app"
	"github.com/docuchat/docuchat/internal/models"
)

func runIngest(application *app.App, args []string) error {
	owner, err := requireUser()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: docuchat -user <id> ingest <file>")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := application.DocumentService.Ingest(context.Background(), owner, filepath.Base(path), content)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %s\n", doc.OriginalFilename)
	fmt.Printf("  ID:     %s\n", doc.ID)
	fmt.Printf("  Chunks: %d\n", doc.ChunkCount)
	fmt.Printf("  Text:   %d characters\n", doc.TextLength)
	return nil
}

func runQuery(application *app.App, args []string) error {
	owner, err := requireUser()
	if err != nil {
		return err
	}
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: docuchat -user <id> query <question> [top-k]")
	}

	req := &models.QueryRequest{Question: args[0]}
	if len(args) == 2 {
		k, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("top-k must be a number: %w", err)
		}
		req.TopK = k
	}

	resp, err := application.QueryService.Ask(context.Background(), owner, req)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for _, source := range resp.Sources {
			fmt.Printf("  %s (distance %.4f)\n", source.Document, source.Distance)
		}
	}
	for _, scored := range resp.Media {
		label := "image"
		if scored.Item.Table != nil {
			label = "table"
		}
		fmt.Printf("Related %s on page %d: %s (score %.2f)\n", label, scored.Item.PageNumber, scored.Item.Description, scored.Score)
	}
	return nil
}

func runList(application *app.App) error {
	owner, err := requireUser()
	if err != nil {
		return err
	}

	docs, err := application.DocumentService.List(owner)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents uploaded.")
		return nil
	}

	for _, doc := range docs {
		status := "pending"
		if doc.Indexed() {
			status = fmt.Sprintf("%d chunks", doc.ChunkCount)
		}
		fmt.Printf("%s  %-30s  %8d bytes  %s\n", doc.ID, doc.OriginalFilename, doc.FileSize, status)
	}
	return nil
}

func runDelete(application *app.App, args []string) error {
	owner, err := requireUser()
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: docuchat -user <id> delete <doc-id>")
	}

	if err := application.DocumentService.Delete(args[0], owner); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
