package main

import (
	"flag"
	"os"
	"reflect"

	"github.com/aquasecurity/updateinfo-db/pkg/db"
	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
)

var (
	oldCacheDir = flag.String("old_cache_dir", "cache/old", "cache dir of the old DB")
	newCacheDir = flag.String("new_cache_dir", "cache/new", "cache dir of the new DB")
)

func main() {
	flag.Parse()
	oldAdvs := readAdvisories(*oldCacheDir)
	newAdvs := readAdvisories(*newCacheDir)

	log.Info("Comparing advisories", log.Int("old", len(oldAdvs)), log.Int("new", len(newAdvs)))
	for id, oldAdv := range oldAdvs {
		newAdv, ok := newAdvs[id]
		if !ok {
			log.Info("Missing in the new DB", log.AdvisoryID(id))
		} else if !reflect.DeepEqual(oldAdv, newAdv) {
			log.Info("Changed", log.AdvisoryID(id))
		}
	}
	for id := range newAdvs {
		if _, ok := oldAdvs[id]; !ok {
			log.Info("Added in the new DB", log.AdvisoryID(id))
		}
	}
}

// readAdvisories opens one DB at a time since the db package keeps a single connection.
func readAdvisories(cacheDir string) map[string]updateinfo.Advisory {
	if err := db.Init(cacheDir); err != nil {
		log.Error("Failed to open DB", log.FilePath(db.Path(cacheDir)), log.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	advisories := make(map[string]updateinfo.Advisory)
	err := db.Config{}.ForEachAdvisory(func(adv updateinfo.Advisory) error {
		advisories[adv.ID] = adv
		return nil
	})
	if err != nil {
		log.Error("Failed to read DB", log.FilePath(db.Path(cacheDir)), log.Err(err))
		os.Exit(1)
	}
	return advisories
}
