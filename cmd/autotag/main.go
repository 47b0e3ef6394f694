package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/ninesib/backend/internal/models"
	"github.com/ninesib/backend/internal/suggest"
	"github.com/ninesib/backend/internal/topics"
)

// autotag fills in missing topic tags on a question-set JSON file.
// Keyword inference runs first; with -ai, questions that land on the
// catch-all get a second opinion from the model.
func main() {
	var (
		inPath  = flag.String("in", "", "path to question set JSON (import envelope format)")
		outPath = flag.String("out", "", "output path (default: overwrite input)")
		useAI   = flag.String("ai", "", "set to 'on' to resolve catch-all questions with the model")
		force   = flag.Bool("force", false, "re-tag questions that already have topics")
	)
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *outPath == "" {
		*outPath = *inPath
	}

	godotenv.Load()

	data, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("read %s: %v", *inPath, err)
	}

	var env models.ImportEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Fatalf("parse %s: %v", *inPath, err)
	}

	var sug *suggest.Suggester
	if *useAI == "on" {
		sug = suggest.NewSuggester(suggest.NewClient())
	}

	tagged, aiTagged, unresolved := 0, 0, 0
	ctx := context.Background()

	for i := range env.Questions {
		q := &env.Questions[i]
		if len(q.Topics) > 0 && !*force {
			continue
		}

		q.Topics = topics.InferTopicsBatch(q)
		tagged++

		if sug == nil || !isCatchAllOnly(q.Topics) {
			continue
		}

		tctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		topic, err := sug.SuggestTopic(tctx, q)
		cancel()
		if err != nil {
			log.Printf("[autotag] %s: model suggestion failed: %v", q.ID, err)
			unresolved++
			continue
		}
		if topic != topics.CatchAll {
			q.Topics = []string{topic}
			aiTagged++
		} else {
			unresolved++
		}
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(*outPath, out, 0644); err != nil {
		log.Fatalf("write %s: %v", *outPath, err)
	}

	fmt.Printf("Tagged %d/%d questions (%d via model, %d left on %q)\n",
		tagged, len(env.Questions), aiTagged, unresolved, topics.CatchAll)
}

func isCatchAllOnly(ts []string) bool {
	return len(ts) == 1 && ts[0] == topics.CatchAll
}
