// Package syncsvc is the single gateway between talentdesk and its local
// store.
//
// # Overview
//
// Every read and write of the influencer and collaboration collections goes
// through a Service. The Service persists whole collections, keeps a small
// metadata record (device id, last sync time), and after every write
// broadcasts the new contents of the collection to registered observers.
// Bindings, the status indicator and the dashboard are all observers.
//
//	caller ──SaveData/Update──▶ Service ──Put──▶ store.Store
//	                               │
//	                               └──Event──▶ observers (registration order)
//
// # Lifecycle
//
// A Service starts Uninitialized. Init seeds empty collections with the
// built-in dataset, ensures metadata, optionally reconciles derived fields,
// arms the periodic refresh and moves to Ready. Destroy stops background
// work and moves to Stopped; a stopped Service rejects writes with
// ErrStopped.
//
// Usage
//
//	st, err := store.Open("sqlite", ".talentdesk/talentdesk.db")
//	if err != nil {
//	    return err
//	}
//	defer st.Close()
//
//	svc, err := syncsvc.New(st, nil)
//	if err != nil {
//	    return err
//	}
//	defer svc.Destroy()
//
//	if err := svc.Init(ctx); err != nil {
//	    return err
//	}
//
//	sub := svc.Subscribe(func(e syncsvc.Event) {
//	    fmt.Println(e.Name(), len(e.Records))
//	}, schema.Influencers)
//	defer sub.Close()
//
//	influencers := syncsvc.Get[schema.Influencer](ctx, svc)
//
// # Consistency
//
// Operations that touch both collections use Update, which hands the
// callback an in-memory Dataset and writes back only what changed. The
// store has no multi-key transaction, so a crash between the two writes can
// leave influencer counts stale; Config.Reconcile repairs that on the next
// start.
package syncsvc
