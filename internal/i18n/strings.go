package i18n

// Strings is one language's UI string table. Fields containing {name} are
// filled by WithName; {n} counts are filled by the *Text helpers.
type Strings struct {
	PageTitle           string   `json:"page_title"`
	TabChat             string   `json:"tab_chat"`
	TabPlan             string   `json:"tab_plan"`
	CandidateLabel      string   `json:"candidate_label"`
	DownloadPDF         string   `json:"download_pdf"`
	HeaderTagline       string   `json:"header_tagline"`
	IdentityLabel       string   `json:"identity_label"`
	IdentityHelp        string   `json:"identity_help"`
	JobHeader           string   `json:"job_header"`
	JobRadioNone        string   `json:"job_radio_none"`
	JobRadioPaste       string   `json:"job_radio_paste"`
	JobRadioURL         string   `json:"job_radio_url"`
	JobTextareaLabel    string   `json:"job_textarea_label"`
	JobPlaceholder      string   `json:"job_placeholder"`
	JobURLPlaceholder   string   `json:"job_url_placeholder"`
	JobFetching         string   `json:"job_fetching"`
	TryAsking           string   `json:"try_asking"`
	ChatPlaceholder     string   `json:"chat_placeholder"`
	Remaining           string   `json:"remaining"`
	Exhausted           string   `json:"exhausted"`
	Footer              string   `json:"footer"`
	CostLabel           string   `json:"cost_label"`
	UnlockHeading       string   `json:"unlock_heading"`
	UnlockBody          string   `json:"unlock_body"`
	EmailPlaceholder    string   `json:"email_placeholder"`
	EmailSubmit         string   `json:"email_submit"`
	EmailThanks         string   `json:"email_thanks"`
	EmailInvalid        string   `json:"email_invalid"`
	PasscodeLabel       string   `json:"passcode_label"`
	PasscodePlaceholder string   `json:"passcode_placeholder"`
	PasscodeSubmit      string   `json:"passcode_submit"`
	PasscodeInvalid     string   `json:"passcode_invalid"`
	PasscodeSuccess     string   `json:"passcode_success"`
	ModelError          string   `json:"model_error"`
	ExampleQuestions    []string `json:"example_questions"`
	JobQuestions        []string `json:"job_questions"`
}

var tables = map[string]Strings{
	"en": {
		PageTitle:         "le comptoir",
		TabChat:           "le comptoir",
		TabPlan:           "Marketing Plan",
		CandidateLabel:    "Talk to",
		DownloadPDF:       "Download PDF",
		HeaderTagline:     "*le comptoir* — ask about {name}'s work",
		IdentityLabel:     "Professional identity",
		IdentityHelp:      "Changes how {name}'s experience is presented to visitors",
		JobHeader:         "**Match against a job**",
		JobRadioNone:      "None",
		JobRadioPaste:     "Paste text",
		JobRadioURL:       "URL",
		JobTextareaLabel:  "Job description",
		JobPlaceholder:    "Paste the job description here...",
		JobURLPlaceholder: "https://...",
		JobFetching:       "Fetching...",
		TryAsking:         "**Try asking:**",
		ChatPlaceholder:   "Ask about {name}'s work...",
		Remaining:         "{n} free question{s} remaining",
		Exhausted: "You've used all {n} questions in the free tier. " +
			"A paid version with extended conversations and deeper analysis " +
			"is coming soon.",
		Footer: "*le comptoir* — AI agents who know these professionals' work. " +
			"Answers are grounded in actual portfolios.",
		CostLabel:     "Est. cost this session: ${cost}",
		UnlockHeading: "Want deeper answers?",
		UnlockBody: "You've used your {n} free preview questions. " +
			"Leave your email to receive a passcode for extended access " +
			"with longer, more detailed responses.",
		EmailPlaceholder:    "you@company.com",
		EmailSubmit:         "Request access",
		EmailThanks:         "Thank you! We'll send you a passcode shortly.",
		EmailInvalid:        "Please enter a valid email address.",
		PasscodeLabel:       "Have a passcode?",
		PasscodePlaceholder: "Enter passcode",
		PasscodeSubmit:      "Unlock",
		PasscodeInvalid:     "Invalid passcode. Please check and try again.",
		PasscodeSuccess:     "Unlocked! You now have extended access.",
		ModelError:          "Something went wrong while answering. Please try again.",
		ExampleQuestions: []string{
			"What are {name}'s strongest technical skills?",
			"Tell me about {name}'s most impactful project.",
			"How did {name} transition between roles or domains?",
			"What kind of teams has {name} worked with?",
			"What makes {name} stand out as a candidate?",
		},
		JobQuestions: []string{
			"How does {name} match this role?",
			"What gaps should {name} address for this position?",
			"Write a cover letter for this role.",
		},
	},
	"fr": {
		PageTitle:         "le comptoir",
		TabChat:           "le comptoir",
		TabPlan:           "Plan Marketing",
		CandidateLabel:    "Parler avec",
		DownloadPDF:       "Télécharger PDF",
		HeaderTagline:     "*le comptoir* — renseignez-vous sur le travail de {name}",
		IdentityLabel:     "Identité professionnelle",
		IdentityHelp:      "Change la manière dont l'expérience de {name} est présentée",
		JobHeader:         "**Comparer à un poste**",
		JobRadioNone:      "Aucun",
		JobRadioPaste:     "Coller le texte",
		JobRadioURL:       "URL",
		JobTextareaLabel:  "Description du poste",
		JobPlaceholder:    "Collez la description du poste ici...",
		JobURLPlaceholder: "https://...",
		JobFetching:       "Chargement...",
		TryAsking:         "**Essayez de demander :**",
		ChatPlaceholder:   "Posez une question sur le travail de {name}...",
		Remaining:         "{n} question{s} gratuite{s} restante{s}",
		Exhausted: "Vous avez utilisé vos {n} questions gratuites. " +
			"Une version payante avec des conversations plus approfondies " +
			"sera bientôt disponible.",
		Footer: "*le comptoir* — des agents IA qui connaissent le travail de ces professionnels. " +
			"Les réponses sont fondées sur leurs portfolios.",
		CostLabel:     "Coût estimé de la session : ${cost}",
		UnlockHeading: "Envie de réponses plus détaillées ?",
		UnlockBody: "Vous avez utilisé vos {n} questions d'aperçu gratuites. " +
			"Laissez votre email pour recevoir un code d'accès " +
			"avec des réponses plus longues et détaillées.",
		EmailPlaceholder:    "vous@entreprise.com",
		EmailSubmit:         "Demander l'accès",
		EmailThanks:         "Merci ! Nous vous enverrons un code d'accès sous peu.",
		EmailInvalid:        "Veuillez saisir une adresse email valide.",
		PasscodeLabel:       "Vous avez un code ?",
		PasscodePlaceholder: "Entrez le code",
		PasscodeSubmit:      "Débloquer",
		PasscodeInvalid:     "Code invalide. Veuillez vérifier et réessayer.",
		PasscodeSuccess:     "Débloqué ! Vous avez maintenant un accès étendu.",
		ModelError:          "Une erreur est survenue pendant la réponse. Veuillez réessayer.",
		ExampleQuestions: []string{
			"Quelles sont les compétences techniques clés de {name} ?",
			"Parlez-moi du projet le plus marquant de {name}.",
			"Comment {name} a évolué entre différents domaines ?",
			"Avec quels types d'équipes {name} a travaillé ?",
			"Qu'est-ce qui distingue {name} comme candidat ?",
		},
		JobQuestions: []string{
			"En quoi {name} correspond à ce poste ?",
			"Quelles lacunes {name} devrait combler pour ce poste ?",
			"Rédigez une lettre de motivation pour ce poste.",
		},
	},
	"de": {
		PageTitle:         "le comptoir",
		TabChat:           "le comptoir",
		TabPlan:           "Marketingkonzept",
		CandidateLabel:    "Sprechen mit",
		DownloadPDF:       "PDF herunterladen",
		HeaderTagline:     "*le comptoir* — erfahren Sie mehr über {name}s Arbeit",
		IdentityLabel:     "Berufliche Identität",
		IdentityHelp:      "Ändert wie {name}s Erfahrung den Besuchern präsentiert wird",
		JobHeader:         "**Mit einer Stelle vergleichen**",
		JobRadioNone:      "Keine",
		JobRadioPaste:     "Text einfügen",
		JobRadioURL:       "URL",
		JobTextareaLabel:  "Stellenbeschreibung",
		JobPlaceholder:    "Stellenbeschreibung hier einfügen...",
		JobURLPlaceholder: "https://...",
		JobFetching:       "Wird geladen...",
		TryAsking:         "**Probieren Sie zu fragen:**",
		ChatPlaceholder:   "Fragen Sie nach {name}s Arbeit...",
		Remaining:         "{n} kostenlose Frage{n_de} übrig",
		Exhausted: "Sie haben alle {n} kostenlosen Fragen aufgebraucht. " +
			"Eine kostenpflichtige Version mit erweiterten Gesprächen und " +
			"tieferer Analyse kommt bald.",
		Footer: "*le comptoir* — KI-Agenten, die die Arbeit dieser Fachleute kennen. " +
			"Antworten basieren auf echten Portfolios.",
		CostLabel:     "Geschätzte Kosten dieser Sitzung: ${cost}",
		UnlockHeading: "Möchten Sie ausführlichere Antworten?",
		UnlockBody: "Sie haben Ihre {n} kostenlosen Vorschau-Fragen aufgebraucht. " +
			"Hinterlassen Sie Ihre E-Mail, um einen Zugangscode für erweiterten " +
			"Zugang mit längeren, detaillierteren Antworten zu erhalten.",
		EmailPlaceholder:    "sie@firma.ch",
		EmailSubmit:         "Zugang anfordern",
		EmailThanks:         "Vielen Dank! Wir senden Ihnen in Kürze einen Zugangscode.",
		EmailInvalid:        "Bitte geben Sie eine gültige E-Mail-Adresse ein.",
		PasscodeLabel:       "Haben Sie einen Zugangscode?",
		PasscodePlaceholder: "Code eingeben",
		PasscodeSubmit:      "Freischalten",
		PasscodeInvalid:     "Ungültiger Code. Bitte überprüfen und erneut versuchen.",
		PasscodeSuccess:     "Freigeschaltet! Sie haben jetzt erweiterten Zugang.",
		ModelError:          "Bei der Antwort ist ein Fehler aufgetreten. Bitte versuchen Sie es erneut.",
		ExampleQuestions: []string{
			"Was sind {name}s wichtigste technische Fähigkeiten?",
			"Erzählen Sie mir vom wirkungsvollsten Projekt von {name}.",
			"Wie hat {name} zwischen verschiedenen Bereichen gewechselt?",
			"Mit welchen Teams hat {name} zusammengearbeitet?",
			"Was zeichnet {name} als Kandidat aus?",
		},
		JobQuestions: []string{
			"Wie passt {name} zu dieser Stelle?",
			"Welche Lücken sollte {name} für diese Position schliessen?",
			"Schreiben Sie ein Bewerbungsschreiben für diese Stelle.",
		},
	},
}
