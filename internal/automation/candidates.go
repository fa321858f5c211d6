package automation

import (
	"applypilot/internal/browser"
	"applypilot/internal/platform"
)

// formSelectors holds the candidate lookups tried, in order, for each element
// an application form may expose. Boards ship several DOM generations at
// once, so every element carries a fallback chain.
type formSelectors struct {
	Apply    []browser.Lookup
	Name     []browser.Lookup
	Email    []browser.Lookup
	Phone    []browser.Lookup
	Resume   []browser.Lookup
	Continue []browser.Lookup
	Submit   []browser.Lookup
	Success  []browser.Lookup
	Login    []browser.Lookup
}

var sharedFieldSelectors = struct {
	Name   []browser.Lookup
	Email  []browser.Lookup
	Phone  []browser.Lookup
	Resume []browser.Lookup
}{
	Name: []browser.Lookup{
		browser.CSS(`input[name="name"]`),
		browser.CSS(`input[name="fullName"]`),
		browser.CSS(`input[id*="name" i]`),
		browser.CSS(`input[placeholder*="name" i]`),
	},
	Email: []browser.Lookup{
		browser.CSS(`input[type="email"]`),
		browser.CSS(`input[name="email"]`),
		browser.CSS(`input[id*="email" i]`),
	},
	Phone: []browser.Lookup{
		browser.CSS(`input[type="tel"]`),
		browser.CSS(`input[name="phone"]`),
		browser.CSS(`input[id*="phone" i]`),
	},
	Resume: []browser.Lookup{
		browser.CSS(`input[type="file"]`),
		browser.CSS(`input[name="resume"]`),
		browser.CSS(`input[accept*="pdf"]`),
	},
}

var formProfiles = map[platform.Platform]formSelectors{
	platform.Indeed: {
		Apply: []browser.Lookup{
			browser.CSS(`#indeedApplyButton`),
			browser.CSS(`.jobsearch-IndeedApplyButton-newDesign`),
			browser.CSS(`button[id*="indeedApplyButton"]`),
			browser.XPath(`//button[contains(., "Apply now")]`),
			browser.XPath(`//button[contains(., "Easy apply")]`),
		},
		Name:   sharedFieldSelectors.Name,
		Email:  sharedFieldSelectors.Email,
		Phone:  sharedFieldSelectors.Phone,
		Resume: sharedFieldSelectors.Resume,
		Continue: []browser.Lookup{
			browser.CSS(`button[data-testid="continue-button"]`),
			browser.XPath(`//button[contains(., "Continue")]`),
			browser.XPath(`//button[contains(., "Next")]`),
		},
		Submit: []browser.Lookup{
			browser.CSS(`button[data-testid="submit-button"]`),
			browser.XPath(`//button[contains(., "Submit your application")]`),
			browser.XPath(`//button[contains(., "Submit")]`),
		},
		Success: []browser.Lookup{
			browser.CSS(`.ia-PostApply`),
			browser.XPath(`//*[contains(., "Application submitted")]`),
			browser.XPath(`//*[contains(., "application has been submitted")]`),
		},
		Login: []browser.Lookup{
			browser.CSS(`#login-email-input`),
			browser.CSS(`form[action*="login"]`),
			browser.XPath(`//h1[contains(., "Sign in")]`),
		},
	},
	platform.Wellfound: {
		Apply: []browser.Lookup{
			browser.CSS(`button[data-test="ApplyButton"]`),
			browser.CSS(`.apply-button`),
			browser.XPath(`//button[contains(., "Apply")]`),
		},
		Name:   sharedFieldSelectors.Name,
		Email:  sharedFieldSelectors.Email,
		Phone:  sharedFieldSelectors.Phone,
		Resume: sharedFieldSelectors.Resume,
		Continue: []browser.Lookup{
			browser.XPath(`//button[contains(., "Continue")]`),
			browser.XPath(`//button[contains(., "Next")]`),
		},
		Submit: []browser.Lookup{
			browser.CSS(`button[type="submit"]`),
			browser.XPath(`//button[contains(., "Submit")]`),
			browser.XPath(`//button[contains(., "Send application")]`),
		},
		Success: []browser.Lookup{
			browser.XPath(`//*[contains(., "Application sent")]`),
			browser.XPath(`//*[contains(., "You applied")]`),
		},
		Login: []browser.Lookup{
			browser.CSS(`input[name="user[email]"]`),
			browser.CSS(`form[action*="login"]`),
			browser.XPath(`//h1[contains(., "Log in")]`),
		},
	},
}
