package crawl

import "jobtrawler/internal/browser"

// Selectors names every page element the engine interacts with. Defaults
// target the supported job board; every locator is overridable through
// configuration so selector churn on the site is a config change, not a
// code change.
type Selectors struct {
	SearchTerms    browser.Locator
	SearchLocation browser.Locator
	ListingCard    browser.Locator
	NextPage       browser.Locator
	ConsentAccept  browser.Locator
	Challenge      browser.Locator

	Title       browser.Locator
	Location    browser.Locator
	Salary      browser.Locator
	Benefits    browser.Locator
	Description browser.Locator
}

// DefaultSelectors returns the locator set for the supported job board.
func DefaultSelectors() Selectors {
	return Selectors{
		SearchTerms:    browser.CSS("#text-input-what"),
		SearchLocation: browser.CSS("#text-input-where"),
		ListingCard:    browser.CSS(".job_seen_beacon"),
		NextPage:       browser.XPath(`//a[@aria-label='Suivant']`),
		ConsentAccept:  browser.CSS("#onetrust-accept-btn-handler"),
		Challenge:      browser.XPath(`//div[contains(@class, 'captcha')]`),

		Title:       browser.XPath(`//h2[contains(@class, 'jobsearch-JobInfoHeader-title')]`),
		Location:    browser.CSS(`[data-testid="inlineHeader-companyLocation"]`),
		Salary:      browser.XPath(`//div[contains(@id, 'salaryInfoAndJobType')]`),
		Benefits:    browser.CSS("#benefits"),
		Description: browser.CSS("#jobDescriptionText"),
	}
}
