// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Command submitctl is the operator tool for the submission API.

It mints development tokens, prints the workflow and taxonomy the server is
built with, and drives schema migrations. Settings come from flags first,
then from the same environment variables the API reads (DATABASE_URL,
MIGRATION_PATH, JWT_PRIVATE_KEY_PATH, JWT_PUBLIC_KEY_PATH).
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
