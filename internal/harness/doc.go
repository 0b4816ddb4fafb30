// Package harness fires concurrent chat completion waves at an
// OpenAI-compatible endpoint and classifies every attempt.
//
// # Attempts
//
// Each attempt asks the model to double its own request ID ("Please answer:
// 3 + 3 = ?") and checks the reply for the expected value. Because every ID
// expects a different answer, responses leaking between sessions show up as
// incorrect answers rather than passing unnoticed. Attempt failures are
// data, not errors: transport problems, non-200 statuses, and undecodable
// bodies all come back as failed [Outcome] values.
//
// # Scenarios
//
// A [Harness] runs three conversation shapes:
//
//   - [Harness.RunIndependent]: every attempt opens its own conversation.
//   - [Harness.RunShared]: a synchronous seed request opens one conversation
//     that all concurrent attempts then join.
//   - [Harness.RunMixed]: one wave mixing fresh-conversation attempts with
//     attempts joining a seeded conversation.
//
// Waves launch one goroutine per attempt and write results into
// pre-assigned slots, so a batch always comes back ordered by request ID no
// matter how the attempts interleave. Only a failed seed aborts a scenario
// ([*SeedError]); individual attempt failures never cancel their siblings.
//
// # Driver
//
// The [Driver] sequences steps with settle pauses in between and hands each
// [StepResult] to a callback as it completes:
//
//	driver := harness.NewDriver(h, harness.DriverOptions{
//		Steps: harness.DefaultSteps(5, 3, 3),
//		Pause: 2 * time.Second,
//		OnStep: func(res harness.StepResult) {
//			// print per-scenario stats
//		},
//	})
//	results := driver.Run(ctx)
package harness
