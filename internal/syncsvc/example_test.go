package syncsvc_test

import (
	"context"
	"fmt"
	"log"

	"github.com/talentdesk/talentdesk/internal/schema"
	"github.com/talentdesk/talentdesk/internal/store"
	"github.com/talentdesk/talentdesk/internal/syncsvc"
)

func ExampleService() {
	ctx := context.Background()

	cfg := syncsvc.DefaultConfig()
	cfg.Interval = 0
	svc, err := syncsvc.New(store.NewMemory(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Destroy()

	if err := svc.Init(ctx); err != nil {
		log.Fatal(err)
	}

	sub := svc.Subscribe(func(e syncsvc.Event) {
		fmt.Println(e.Name(), len(e.Records))
	}, schema.Influencers)
	defer sub.Close()

	influencers := syncsvc.Get[schema.Influencer](ctx, svc)
	if err := syncsvc.Save(ctx, svc, influencers[:2]); err != nil {
		log.Fatal(err)
	}
	// Output: influencersUpdated 2
}
