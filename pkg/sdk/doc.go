// Package drugfacts embeds the drug facts retrieval engine in a Go program.
//
// Records are ranked with smoothed TF-IDF cosine similarity. When a composer
// is configured, the best matches ground a generated answer.
//
// # Retrieval only
//
//	client, _ := drugfacts.New(ctx, drugfacts.WithCorpusFile("data/drug_facts.json"))
//	res := client.Search(ctx, "what helps with a fever", 3)
//	for _, hit := range res.Hits {
//	    fmt.Println(hit.Name, hit.Score)
//	}
//
// # Grounded answers
//
//	client, _ := drugfacts.New(ctx,
//	    drugfacts.WithCorpusFile("data/drug_facts.json"),
//	    drugfacts.WithDeepSeek(os.Getenv("DEEPSEEK_API_KEY")),
//	    drugfacts.WithValkeyCache("localhost:6379", "", time.Hour),
//	)
//	ans, err := client.Ask(ctx, "Can I take ibuprofen on an empty stomach?")
package drugfacts
