// Package i18n holds the static translation dictionary for the wizard and
// the generated policy documents. Keys map to nl/fr/en strings; unknown keys
// fall back to the key itself so missing entries are visible, not fatal.
package i18n

import "strings"

// Languages supported by the document generator and the wizard UI.
var Languages = []string{"en", "nl", "fr"}

const DefaultLanguage = "en"

type entry struct {
	nl string
	fr string
	en string
}

var translations = map[string]entry{
	"mobilityBudgetPolicy": {
		nl: "Mobiliteitsbudget beleid",
		fr: "Politique de budget mobilité",
		en: "Mobility Budget Policy",
	},
	"carCategories": {
		nl: "Autocategorieën",
		fr: "Catégories de voitures",
		en: "Car Categories",
	},
	"categoryName": {
		nl: "Categorienaam",
		fr: "Nom de la catégorie",
		en: "Category Name",
	},
	"annualKilometers": {
		nl: "Jaarlijkse kilometers",
		fr: "Kilomètres annuels",
		en: "Annual Kilometers",
	},
	"leasingDuration": {
		nl: "Leaseduur (maanden)",
		fr: "Durée de leasing (mois)",
		en: "Leasing Duration (months)",
	},
	"monthlyTco": {
		nl: "Maandelijkse TCO",
		fr: "TCO mensuel",
		en: "Monthly TCO",
	},
	"referenceCar": {
		nl: "Referentiewagen",
		fr: "Voiture de référence",
		en: "Reference Car",
	},
	"employeeContribution": {
		nl: "Werknemersbijdrage",
		fr: "Contribution de l'employé",
		en: "Employee Contribution",
	},
	"cleaningCost": {
		nl: "Schoonmaakkosten",
		fr: "Frais de nettoyage",
		en: "Cleaning Cost",
	},
	"parkingCost": {
		nl: "Parkeerkosten",
		fr: "Frais de parking",
		en: "Parking Cost",
	},
	"fuelCard": {
		nl: "Tankkaart",
		fr: "Carte carburant",
		en: "Fuel Card",
	},
	"preparedFor": {
		nl: "Opgesteld voor",
		fr: "Préparé pour",
		en: "Prepared for",
	},
	"generatedOn": {
		nl: "Gegenereerd op",
		fr: "Généré le",
		en: "Generated on",
	},
	"policyIntroduction": {
		nl: "Dit document beschrijft het mobiliteitsbudgetbeleid en de beschikbare autocategorieën voor de werknemers van het bedrijf.",
		fr: "Ce document décrit la politique de budget mobilité et les catégories de voitures disponibles pour les employés de l'entreprise.",
		en: "This document describes the mobility budget policy and the car categories available to the company's employees.",
	},
	"generatingPolicyDocuments": {
		nl: "Beleidsdocumenten worden gegenereerd...",
		fr: "Génération des documents de politique...",
		en: "Generating policy documents...",
	},
	"errorGeneratingDocument": {
		nl: "Fout bij het genereren van het document",
		fr: "Erreur lors de la génération du document",
		en: "Error generating the document",
	},
	"errorLoadingDocument": {
		nl: "Fout bij het laden van het document",
		fr: "Erreur lors du chargement du document",
		en: "Error loading the document",
	},
}

// T translates key into lang, falling back to English and then to the key.
func T(lang, key string) string {
	e, ok := translations[key]
	if !ok {
		return key
	}
	switch normalize(lang) {
	case "nl":
		return e.nl
	case "fr":
		return e.fr
	default:
		return e.en
	}
}

// Known reports whether lang is one of the supported language codes.
func Known(lang string) bool {
	n := normalize(lang)
	for _, l := range Languages {
		if l == n {
			return true
		}
	}
	return false
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		code := normalize(strings.SplitN(strings.TrimSpace(part), ";", 2)[0])
		if Known(code) {
			return code
		}
	}
	return DefaultLanguage
}

func normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
