package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"
	hatchet_ext "github.com/stroppy-io/deployments-driver/internal/core/hatchet-ext"
	"github.com/stroppy-io/deployments-driver/internal/domain/deployment"
	"github.com/stroppy-io/deployments-driver/internal/workflows/deployments"
)

func main() {
	file := pflag.StringP("file", "f", "", "batch file, defaults to one go-bucket update")
	pflag.Parse()

	input := &deployments.RunInput{
		Deployments: []deployment.Request{{
			Project:   deployment.ProjectGoBucket,
			Operation: deployment.OperationUpdate,
		}},
	}
	if *file != "" {
		reqs, err := deployments.ReadBatch(*file)
		if err != nil {
			log.Fatalf("Failed to read batch: %v", err)
		}
		input.Deployments = reqs
	}

	c, err := hatchet_ext.HatchetClient()
	if err != nil {
		log.Fatalf("Failed to create Hatchet client: %v", err)
	}

	result, err := c.Run(context.Background(), deployments.RunWorkflowName, input)
	if err != nil {
		log.Fatalf("Failed to run Hatchet workflow: %v", err)
	}

	var output deployments.RunOutput
	if err := result.TaskOutput(deployments.RunDeploymentsTaskName).Into(&output); err != nil {
		log.Fatalf("Failed to read workflow output: %v", err)
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
