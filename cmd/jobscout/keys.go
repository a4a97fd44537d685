package main

import (
	"fmt"
	"log"
	"os"

	"jobscout-engine/internal/secrets"
)

const keysUsage = `usage:
  jobscout keys set <provider> <value>    store a key in the OS keychain
  jobscout keys delete <provider>         remove a key from the OS keychain
  jobscout keys check                     show which keys resolve

providers: openai, tavily, scrapegraph`

func runKeys(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, keysUsage)
		return 2
	}
	switch args[0] {
	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, keysUsage)
			return 2
		}
		p, ok := secrets.ByName(args[1])
		if !ok {
			log.Printf("unknown provider %q", args[1])
			return 2
		}
		if err := secrets.Set(p, args[2]); err != nil {
			log.Printf("store %s key: %v", p.Name, err)
			return 1
		}
		log.Printf("stored %s key in the keychain", p.Name)
		return 0
	case "delete":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, keysUsage)
			return 2
		}
		p, ok := secrets.ByName(args[1])
		if !ok {
			log.Printf("unknown provider %q", args[1])
			return 2
		}
		if err := secrets.Delete(p); err != nil {
			log.Printf("delete %s key: %v", p.Name, err)
			return 1
		}
		log.Printf("deleted %s key from the keychain", p.Name)
		return 0
	case "check":
		code := 0
		for _, p := range []secrets.Provider{secrets.OpenAI, secrets.Tavily, secrets.ScrapeGraph} {
			if _, err := secrets.Get(p); err != nil {
				log.Printf("%s: missing (set %s or store it in the keychain)", p.Name, p.EnvVar)
				code = 1
				continue
			}
			log.Printf("%s: ok", p.Name)
		}
		return code
	default:
		fmt.Fprintln(os.Stderr, keysUsage)
		return 2
	}
}
