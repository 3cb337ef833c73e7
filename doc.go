// Package assistant bootstraps the Gemini model client used by the Godot /
// GameMaker assistant. It registers an application from a fixed
// configuration record, binds it to an inference backend and hands out one
// pre-configured model handle for the rest of the program.
//
// # Quick Start
//
// With FIREBASE_API_KEY set in the environment (or in a .env file in the
// working directory):
//
//	model, err := assistant.Model()
//	if err != nil {
//	    log.Fatal(err) // e.g. assistant.ErrMissingAPIKey
//	}
//	answer, err := model.GenerateText(ctx, "How do I move a CharacterBody2D?")
//
// Model is built once per process and is safe for concurrent use.
//
// # Explicit Construction
//
// The same pipeline is available step by step, which is what tests and
// multi-project tools use:
//
//	cfg, _ := assistant.LoadConfig(assistant.WithEnvFiles(".env"))
//	app, err := assistant.InitializeApp(cfg)
//	ai, err := assistant.GetAI(ctx, app, assistant.WithBackend(assistant.GoogleAIBackend{}))
//	model, err := assistant.GetGenerativeModel(ai, assistant.ModelParams{
//	    Model: assistant.DefaultModelName,
//	})
//
// InitializeApp fails when the API key is missing, so a handle is never
// produced for an unusable configuration.
//
// # Backends
//
//   - GoogleAIBackend: the Gemini Developer API, authenticated by the app key
//   - VertexAIBackend: Vertex AI in the app's project, authenticated by
//     Application Default Credentials
//
// # Configuration
//
// The record's project literals come from DefaultConfig. Environment
// variables override them:
//
//	FIREBASE_API_KEY              required
//	FIREBASE_AUTH_DOMAIN          FIREBASE_PROJECT_ID
//	FIREBASE_STORAGE_BUCKET       FIREBASE_MESSAGING_SENDER_ID
//	FIREBASE_APP_ID               FIREBASE_MEASUREMENT_ID
//	ASSISTANT_MODEL               default gemini-2.5-flash
//	ASSISTANT_BACKEND             googleai | vertexai
//	ASSISTANT_LOCATION            Vertex AI region, default us-central1
//
// # System Prompts
//
// SystemInstructionFor renders the built-in Godot or GameMaker persona with
// stick templates; AssistantPrompts exposes the provider for custom variables.
//
//	sys, _ := assistant.SystemInstructionFor(assistant.EngineGodot)
//	model, _ := assistant.GetGenerativeModel(ai, assistant.ModelParams{
//	    Model:             assistant.DefaultModelName,
//	    SystemInstruction: sys,
//	})
//
// # Chat and Streaming
//
//	chat := model.StartChat()
//	for resp, err := range chat.SendMessageStream(ctx, assistant.NewTextPart("Explain signals")) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Print(resp.Text())
//	}
package assistant
